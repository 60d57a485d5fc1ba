// Package theme resolves the light/dark appearance and keeps it in sync with the OS setting.
package theme

import "fmt"

// Preference is the user's explicit tri-state choice. It is the only thing persisted.
type Preference string

const (
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// ParsePreference validates a stored or typed preference.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(s); p {
	case PreferenceLight, PreferenceDark, PreferenceSystem:
		return p, nil
	default:
		return "", fmt.Errorf("invalid theme preference %q (must be light, dark, or system)", s)
	}
}

// Next returns the preference after p in the cycle system -> light -> dark -> system.
func (p Preference) Next() Preference {
	switch p {
	case PreferenceSystem:
		return PreferenceLight
	case PreferenceLight:
		return PreferenceDark
	default:
		return PreferenceSystem
	}
}

// Scheme is the color scheme reported by the operating system.
type Scheme int

const (
	// SchemeNoPreference means the OS expresses no choice; it resolves to light.
	SchemeNoPreference Scheme = iota
	SchemeDark
	SchemeLight
)

func (s Scheme) String() string {
	switch s {
	case SchemeDark:
		return "dark"
	case SchemeLight:
		return "light"
	default:
		return "no-preference"
	}
}

// Resolve returns whether the effective appearance is dark.
func Resolve(p Preference, os Scheme) bool {
	switch p {
	case PreferenceDark:
		return true
	case PreferenceLight:
		return false
	default:
		return os == SchemeDark
	}
}

// Palette is the fixed set of named colors screens draw with.
type Palette struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Background    string `json:"background"`
	Card          string `json:"card"`
	Text          string `json:"text"`
	TextSecondary string `json:"textSecondary"`
	Label         string `json:"label"`
	Border        string `json:"border"`
	Error         string `json:"error"`
	Success       string `json:"success"`
}

var (
	// LightPalette is used when the effective appearance is light.
	LightPalette = Palette{
		Primary:       "#3B5BDB",
		Secondary:     "#F08C00",
		Background:    "#F8F9FA",
		Card:          "#FFFFFF",
		Text:          "#212529",
		TextSecondary: "#495057",
		Label:         "#868E96",
		Border:        "#DEE2E6",
		Error:         "#E03131",
		Success:       "#2F9E44",
	}

	// DarkPalette is used when the effective appearance is dark.
	DarkPalette = Palette{
		Primary:       "#748FFC",
		Secondary:     "#FFA94D",
		Background:    "#141517",
		Card:          "#25262B",
		Text:          "#F1F3F5",
		TextSecondary: "#CED4DA",
		Label:         "#909296",
		Border:        "#373A40",
		Error:         "#FF6B6B",
		Success:       "#51CF66",
	}
)

// PaletteFor returns the palette for the given darkness.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

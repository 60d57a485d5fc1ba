// Package media produces placeholders for missing avatars and cover images.
package media

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shelfmateapp/shelfmate/internal/domain"
)

// Avatar describes how to render a user's picture.
type Avatar struct {
	// URL is set when the user uploaded a picture; the other fields are then empty.
	URL      string `json:"url,omitempty"`
	Initials string `json:"initials,omitempty"`
	Color    string `json:"color,omitempty"`
}

var upper = cases.Upper(language.Und)

// AvatarPlaceholder returns the uploaded picture, or initials on a color derived from the user id.
func AvatarPlaceholder(p *domain.UserProfile) Avatar {
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		return Avatar{URL: *p.AvatarURL}
	}
	return Avatar{Initials: Initials(p.DisplayName), Color: ColorForUser(p.BackendID)}
}

// Initials returns up to two upper-cased leading letters of the first and last words of name.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}
	first, _ := utf8.DecodeRuneInString(words[0])
	out := string(first)
	if len(words) > 1 {
		last, _ := utf8.DecodeRuneInString(words[len(words)-1])
		out += string(last)
	}
	return upper.String(out)
}

// ColorForUser returns a stable hex color for userID, picked on the hue wheel at fixed
// saturation and lightness.
func ColorForUser(userID string) string {
	h := 0
	for _, c := range userID {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	r, g, b := hslToRGB(float64(h%360), 0.4, 0.65)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(r1 * 255), uint8(g1 * 255), uint8(b1 * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

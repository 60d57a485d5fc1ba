package prefs

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageNames maps English language names people type to their BCP 47 code.
var languageNames = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "dutch": "nl", "russian": "ru",
	"japanese": "ja", "chinese": "zh", "korean": "ko", "arabic": "ar",
	"hindi": "hi", "polish": "pl", "swedish": "sv", "norwegian": "no",
	"danish": "da", "finnish": "fi", "turkish": "tr", "greek": "el",
	"hebrew": "he", "czech": "cs", "hungarian": "hu", "romanian": "ro",
	"ukrainian": "uk", "catalan": "ca", "persian": "fa", "farsi": "fa",
	"vietnamese": "vi", "indonesian": "id", "mandarin": "zh", "cantonese": "yue",
	"filipino": "fil", "tagalog": "tl", "welsh": "cy", "irish": "ga",
}

// NormalizeLanguage turns a language name ("German"), an ISO 639 code ("deu", "ger", "de") or a
// BCP 47 tag ("pt_BR") into its canonical BCP 47 form.
func NormalizeLanguage(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("language cannot be empty")
	}
	if code, ok := languageNames[s]; ok {
		return code, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("unknown language %q", raw)
	}
	return tag.String(), nil
}

// LanguageName returns the name of code in that language ("Deutsch" for de), or code itself when
// it cannot be parsed.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

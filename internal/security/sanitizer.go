package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy = bluemonday.StrictPolicy()
	phoneRegex = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// SanitizeText strips HTML, null bytes and surrounding whitespace from
// free-form user input such as offer messages and transition comments.
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = htmlPolicy.Sanitize(input)
	return strings.TrimSpace(input)
}

// SanitizeTextN sanitizes like SanitizeText and truncates to at most max
// bytes. The cut never lands inside a multibyte rune, so the result is
// always valid UTF-8.
func SanitizeTextN(input string, max int) string {
	input = SanitizeText(input)
	if len(input) <= max {
		return input
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}

// ValidatePhoneNumber checks if a phone number is plausible after
// stripping common separators.
func ValidatePhoneNumber(phone string) bool {
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "+", "")
	return phoneRegex.MatchString(phone)
}

package sanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Trim removes leading and trailing whitespace from a string.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// ToUpper converts a string to uppercase.
func ToUpper(s string) string {
	return strings.ToUpper(s)
}

// ToLower converts a string to lowercase.
func ToLower(s string) string {
	return strings.ToLower(s)
}

// FoldWidth maps fullwidth and halfwidth forms to their canonical narrow
// equivalents and applies NFKC, so "１２３" typed on an East Asian keyboard
// becomes "123".
func FoldWidth(s string) string {
	return norm.NFKC.String(width.Fold.String(s))
}

// StripSeparators removes whitespace, dashes and underscores users tend to
// insert when copying grouped codes ("1234 5678", "ABCD-EFGH").
func StripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '‐' || r == '‑' || r == '−' {
			return -1
		}
		return r
	}, s)
}

// IsASCIIDigits reports whether s is non-empty and consists only of 0-9.
func IsASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// OneTimeCode normalizes user-entered one-time codes: width folding,
// separator removal and uppercasing.
var OneTimeCode = Compose(Trim, FoldWidth, StripSeparators, ToUpper)

package utils // package utils provides small pure helpers shared by repositories and handlers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountryCode is prefixed to national numbers by NormalizePhone.
const CountryCode = "91"

// NormalizePhone reduces a phone number to digits and prefixes the country
// code for national formats.  It is the key used for duplicate detection,
// so any change here changes which leads are tagged as duplicates.
//
//	10 digits               -> "91" + digits
//	11 digits, leading "0"  -> "91" + digits[1:]
//	12 digits, leading "91" -> digits
//	anything else           -> digits (or the input when it has no digits)
func NormalizePhone(input string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)

	switch {
	case len(digits) == 10:
		return CountryCode + digits
	case len(digits) == 11 && digits[0] == '0':
		return CountryCode + digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, CountryCode):
		return digits
	case digits == "":
		return input
	}
	return digits
}

// TitleCase lower-cases s and upper-cases the first letter of every word,
// where words are separated by single spaces.  Hyphens and runs of spaces
// are left alone.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

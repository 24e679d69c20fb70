package pii

import (
	"strings"
	"unicode"
)

// Normalizer canonicalizes a value before it is encrypted and digested, so that two
// spellings of the same identifier share a digest.
type Normalizer func(string) string

// TrimSpace removes leading and trailing whitespace.
func TrimSpace(v string) string {
	return strings.TrimSpace(v)
}

// UpperTrim trims and upper-cases the value.
func UpperTrim(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// UpperCompact upper-cases the value and removes every whitespace rune.
func UpperCompact(v string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v))
}

// Phone strips whitespace and the usual visual separators ("-", ".", "(", ")").
// A leading "+" is kept.
func Phone(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '-', r == '.', r == '(', r == ')':
			return -1
		default:
			return r
		}
	}, v)
}

// Package lang classifies a customer phone number into a language code
// using its country calling code.
package lang

import (
	"sort"
	"strings"
)

type prefix struct {
	code string
	lang string
}

// Calling-code table. Order here does not matter: prefixes are matched
// longest first, so "351" can never be shadowed by "35" or "3".
var prefixes = []prefix{
	{"39", "it"},  // Italy
	{"41", "de"},  // Switzerland
	{"43", "de"},  // Austria
	{"49", "de"},  // Germany
	{"33", "fr"},  // France
	{"32", "fr"},  // Belgium
	{"34", "es"},  // Spain
	{"52", "es"},  // Mexico
	{"54", "es"},  // Argentina
	{"56", "es"},  // Chile
	{"57", "es"},  // Colombia
	{"351", "pt"}, // Portugal
	{"55", "pt"},  // Brazil
	{"44", "en"},  // UK
	{"353", "en"}, // Ireland
	{"61", "en"},  // Australia
	{"64", "en"},  // New Zealand
	{"1", "en"},   // US/Canada
}

const DefaultLanguage = "en"

func init() {
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i].code) > len(prefixes[j].code)
	})
}

// FromPhone returns the language for a raw phone string. The input may
// carry a channel prefix ("whatsapp:+39...") and arbitrary formatting.
// Never fails: unknown prefixes fall back to DefaultLanguage.
func FromPhone(raw string) string {
	digits := Digits(raw)
	for _, p := range prefixes {
		if strings.HasPrefix(digits, p.code) {
			return p.lang
		}
	}
	return DefaultLanguage
}

// Digits strips the channel prefix and every non-digit character.
func Digits(raw string) string {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		raw = raw[i+1:]
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

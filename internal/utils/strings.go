package utils

import (
	"sort"
	"strings"
)

// NormalizeSeat canonicalizes a seat identifier: trimmed, uppercased.
// Seat codes live as strings end to end; numeric payload values are
// stringified before they get here.
func NormalizeSeat(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSeatSet cleans, dedupes and sorts a seat list. Order is not
// significant for correctness, sorting just keeps responses stable.
func NormalizeSeatSet(raw []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range raw {
		s = NormalizeSeat(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SplitSeatList splits comma/semicolon separated seat strings into cleaned slices.
func SplitSeatList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := []string{}
	for _, p := range parts {
		p = NormalizeSeat(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

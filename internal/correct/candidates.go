package correct

import (
	"strings"

	"github.com/usnaveen/paperlink/internal/code"
)

// Candidates expands raw using the built-in confusion table. See
// Table.Candidates.
func Candidates(raw string) []string {
	return defaultTable.Candidates(raw)
}

// Candidates expands a raw scan into the strings it plausibly was before
// OCR garbled it. The input is uppercased and stripped of everything that
// is not a letter, digit or hyphen; the first candidate is always that
// sanitized input itself, whether or not it is a valid code. After the
// identity come the single-position substitutions the table allows, in
// position order then confusion-list order, deduplicated on first
// appearance.
//
// Only substitutions landing inside the code alphabet are emitted, and
// hyphens are never substituted, so output size stays linear in input
// length. Multi-character repairs are out of scope: anything a single
// substitution cannot reach is left to the edit-distance pass.
func (t Table) Candidates(raw string) []string {
	sanitized := sanitize(raw)
	runes := []rune(sanitized)

	candidates := []string{sanitized}
	seen := map[string]bool{sanitized: true}

	for i, r := range runes {
		if r == '-' {
			continue
		}
		for _, sub := range t[r] {
			if !code.InAlphabet(sub) {
				continue
			}
			variant := make([]rune, len(runes))
			copy(variant, runes)
			variant[i] = sub
			s := string(variant)
			if seen[s] {
				continue
			}
			seen[s] = true
			candidates = append(candidates, s)
		}
	}
	return candidates
}

// sanitize uppercases raw and drops every character that is not an ASCII
// letter, digit or hyphen. Nothing is inserted, reordered or repaired.
func sanitize(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

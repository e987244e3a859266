package match

import (
	"strings"

	"github.com/usnaveen/paperlink/internal/code"
)

// LiveMatch pairs the registered code a live scan resolved to with the
// original string the camera produced, so callers can show both.
type LiveMatch struct {
	// Code is the registered code that matched.
	Code string

	// Scanned is the original, uncorrected input.
	Scanned string
}

// FindSingleSubstitutionMatch matches a scanned code against knownCodes,
// accepting exactly one wrong character. Both sides are reduced to their
// bare payload (prefix and hyphens stripped); a known code matches when
// the payloads have equal length and differ in exactly one position.
// Zero differences do not match here: exact hits are the caller's cheap
// lookup, and staying strict keeps the two paths from shadowing each
// other. The first known code in slice order wins.
//
// Unlike the resolver this never consults the confusion table and never
// computes an edit distance, which is what makes it cheap enough to run
// on every camera frame.
func FindSingleSubstitutionMatch(scannedCode string, knownCodes []string) (LiveMatch, bool) {
	scanned := payload(scannedCode)
	for _, known := range knownCodes {
		if hammingIsOne(scanned, payload(known)) {
			return LiveMatch{Code: known, Scanned: scannedCode}, true
		}
	}
	return LiveMatch{}, false
}

// payload reduces a code-shaped string to its bare characters: uppercase,
// trimmed, PL- prefix and hyphens removed.
func payload(s string) string {
	s = code.Normalize(s)
	s = strings.TrimPrefix(s, code.Prefix)
	return strings.ReplaceAll(s, "-", "")
}

// hammingIsOne reports whether a and b have equal length and differ in
// exactly one position.
func hammingIsOne(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	diffs := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return diffs == 1
}

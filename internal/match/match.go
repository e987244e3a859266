// Package match resolves garbled scans against the set of registered
// codes. Two strategies live here: the full resolver, which expands the
// scan into correction candidates and falls back to edit distance, and a
// single-substitution matcher cheap enough for live camera previews.
package match

import (
	"github.com/agnivade/levenshtein"

	"github.com/usnaveen/paperlink/internal/correct"
)

// DefaultMaxDistance is the edit-distance budget used when callers have
// no reason to pick their own: tight enough that distinct codes do not
// cross-match, loose enough to absorb a couple of stray characters.
const DefaultMaxDistance = 2

// Match describes a successful resolution.
type Match struct {
	// Code is the registered code that won.
	Code string

	// Candidate is the correction candidate that matched it.
	Candidate string

	// Distance is the edit distance between Candidate and Code, 0 for
	// exact hits.
	Distance int

	// Exact is true when a candidate was registered verbatim and the
	// edit-distance pass never ran.
	Exact bool
}

// Resolver matches OCR output against registered codes using a confusion
// table and an edit-distance budget. The zero value is not usable; build
// one with New.
type Resolver struct {
	table       correct.Table
	maxDistance int

	// distance is swappable so tests can observe whether the fuzzy pass
	// ran at all.
	distance func(a, b string) int
}

// New returns a Resolver over the given confusion table. maxDistance is
// honored verbatim: 0 means only exact candidate hits resolve, however
// close a fuzzy match would be. Negative values are treated as 0.
func New(table correct.Table, maxDistance int) *Resolver {
	if maxDistance < 0 {
		maxDistance = 0
	}
	return &Resolver{
		table:       table,
		maxDistance: maxDistance,
		distance:    levenshtein.ComputeDistance,
	}
}

// FindBestMatch resolves ocrResult against validCodes.
//
// The exact pass runs first: candidates generated from ocrResult are
// scanned in generation order and the first one registered verbatim wins
// outright, without any edit-distance work. Otherwise every (valid code,
// candidate) pair is scored and the global minimum wins if it fits the
// budget. Ties keep the first minimal pair encountered, so with a stably
// ordered validCodes slice the earliest code reaching the minimum is the
// deterministic winner.
//
// No match is reported as ok == false, never as an error: a scan that
// resolves to nothing is an expected outcome, not a failure.
func (r *Resolver) FindBestMatch(ocrResult string, validCodes []string) (Match, bool) {
	candidates := r.table.Candidates(ocrResult)

	registered := make(map[string]bool, len(validCodes))
	for _, vc := range validCodes {
		registered[vc] = true
	}
	for _, cand := range candidates {
		if registered[cand] {
			return Match{Code: cand, Candidate: cand, Exact: true}, true
		}
	}

	bestDistance := -1
	var best Match
	for _, vc := range validCodes {
		for _, cand := range candidates {
			if d := r.distance(cand, vc); bestDistance < 0 || d < bestDistance {
				bestDistance = d
				best = Match{Code: vc, Candidate: cand, Distance: d}
			}
		}
	}
	if bestDistance < 0 || bestDistance > r.maxDistance {
		return Match{}, false
	}
	return best, true
}

// FindBestMatch resolves ocrResult with the built-in confusion table and
// the default budget.
func FindBestMatch(ocrResult string, validCodes []string) (Match, bool) {
	return New(correct.Default(), DefaultMaxDistance).FindBestMatch(ocrResult, validCodes)
}

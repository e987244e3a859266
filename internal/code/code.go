// Package code is the single authority on the PaperLink code format:
// the OCR-safe alphabet, the PL-XXX-XXX grammar, and the operations for
// minting, validating, and extracting codes.
//
// The alphabet deliberately excludes the characters handwriting OCR
// mixes up (0/O, 1/I, B, S, Z), so a correctly written code survives a
// scan with high probability. This package never repairs misread
// characters; that is the corrector's job. Normalization here means
// uppercasing and trimming, nothing more.
package code

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

const (
	// Alphabet is the 29-character set code payloads are drawn from:
	// digits 2-9 plus the uppercase letters that remain visually
	// unambiguous in handwriting. 0, O, 1, I, B, S and Z are excluded.
	Alphabet = "23456789ACDEFGHJKLMNPQRTUVWXY"

	// Prefix starts every code.
	Prefix = "PL-"

	// Length is the full formatted length of a code: PL-XXX-XXX.
	Length = 10
)

// codePattern matches the broad shape of a code. Alphabet membership is
// checked separately with IsValid, so near misses such as PL-SA9-K2M are
// matched here but rejected there instead of being silently accepted.
var codePattern = regexp.MustCompile(`PL-[A-Z2-9]{3}-[A-Z2-9]{3}`)

// Generate mints a fresh code in PL-XXX-XXX form, drawing each payload
// character uniformly from Alphabet. With 29^6 (about 594 million)
// combinations collisions are rare but possible, and no registry is
// consulted here: callers that persist codes own the collision retry.
func Generate() string {
	b := make([]byte, 0, Length)
	b = append(b, Prefix...)
	for i := 0; i < 6; i++ {
		if i == 3 {
			b = append(b, '-')
		}
		b = append(b, Alphabet[rand.IntN(len(Alphabet))])
	}
	return string(b)
}

// IsValid reports whether s is a well-formed code after uppercasing:
// the PL- prefix, two groups of three alphabet characters, a hyphen
// between them. Case is forgiven, structure is not: nothing is trimmed
// or repaired, so padded input needs Normalize first.
func IsValid(s string) bool {
	s = strings.ToUpper(s)
	if len(s) != Length || !strings.HasPrefix(s, Prefix) || s[6] != '-' {
		return false
	}
	for i := 3; i < Length; i++ {
		if i == 6 {
			continue
		}
		if !InAlphabet(rune(s[i])) {
			return false
		}
	}
	return true
}

// InAlphabet reports whether r is a member of the code alphabet.
func InAlphabet(r rune) bool {
	return r < 128 && strings.IndexByte(Alphabet, byte(r)) >= 0
}

// Normalize uppercases s and trims surrounding whitespace. It never
// inserts or removes hyphens and never substitutes characters, so a
// misread code stays misread: Normalize followed by IsValid is the
// acceptance gate, and whatever fails it moves on to correction.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ExtractAll scans free-form text (OCR output, pasted notes, anything)
// for code-shaped substrings and returns the valid ones, deduplicated,
// in order of first appearance. The scan is case-insensitive. Text with
// no valid codes yields nil rather than an error.
func ExtractAll(text string) []string {
	matches := codePattern.FindAllString(strings.ToUpper(text), -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var codes []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		if !IsValid(m) {
			continue
		}
		codes = append(codes, m)
	}
	return codes
}

// Package correct repairs OCR misreads of PaperLink codes. It owns the
// confusion table describing which characters handwriting OCR mistakes
// for which, and expands a raw scan into the candidate strings the
// writer plausibly put on paper.
package correct

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps a character as the OCR engine reported it to the characters
// the writer plausibly wrote instead, roughly ordered by how often scans
// make that mistake. The relation is one-directional: the entry for 'L'
// being misread says nothing about anything being misread as 'L', and
// each direction is curated on its own. Entries whose values fall outside
// the code alphabet produce no candidates but are kept so the table
// documents the whole confusion class.
type Table map[rune][]rune

// defaultTable covers the classic handwriting confusions around the
// characters the code alphabet excludes. Keys are what the engine
// reported, values are what the pen probably wrote.
var defaultTable = Table{
	'0': {'Q', 'D'}, // open Q or round D closes up into a zero
	'O': {'Q', 'D'}, // same glyph class as 0
	'1': {'L', 'T'}, // tall L or T collapses into a one
	'I': {'L', 'J'}, // serif I for a sloppy L or J
	'S': {'5', 'F'}, // flat-top 5, curled F
	'B': {'8', 'R'}, // closed 8 loops, heavy R bowl
	'Z': {'2', '7'}, // baseless 2, crossed 7
	'L': {'1', 'I'}, // the reverse direction, outside the alphabet
	'D': {'0', 'O'},
	'Q': {'0', 'O'},
	'5': {'S'},
	'2': {'Z'},
	'7': {'Z'},
}

// Default returns the built-in confusion table. The returned value is
// shared: treat it as read-only and use Load when a deployment needs a
// tuned table.
func Default() Table {
	return defaultTable
}

// Load reads a confusion table from a YAML file mapping single characters
// to lists of single characters, for example:
//
//	"0": ["Q", "D"]
//	"S": ["5", "F"]
//
// The loaded table replaces the default wholesale; entries are not
// merged. Keys should be quoted so digits stay strings.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading confusion table: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing confusion table %s: %w", path, err)
	}

	table := make(Table, len(raw))
	for key, values := range raw {
		k := []rune(key)
		if len(k) != 1 {
			return nil, fmt.Errorf("confusion table key %q: want a single character", key)
		}
		subs := make([]rune, 0, len(values))
		for _, v := range values {
			r := []rune(v)
			if len(r) != 1 {
				return nil, fmt.Errorf("confusion table entry %q -> %q: want single characters", key, v)
			}
			subs = append(subs, r[0])
		}
		table[k[0]] = subs
	}
	return table, nil
}

package code_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usnaveen/paperlink/internal/code"
)

func TestAlphabet(t *testing.T) {
	t.Parallel()

	require.Len(t, code.Alphabet, 29)

	seen := make(map[rune]bool)
	for _, r := range code.Alphabet {
		assert.False(t, seen[r], "alphabet repeats %c", r)
		seen[r] = true
	}

	for _, banned := range "01OIBSZ" {
		assert.False(t, code.InAlphabet(banned), "%c is visually ambiguous and must stay excluded", banned)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		c := code.Generate()
		require.True(t, code.IsValid(c), "generated %q failed validation", c)
	}

	c := code.Generate()
	require.Len(t, c, code.Length)
	assert.True(t, strings.HasPrefix(c, code.Prefix))
	assert.Equal(t, byte('-'), c[6])
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"well formed", "PL-ACD-EFG", true},
		{"digits only payload", "PL-234-567", true},
		{"lowercase accepted", "pl-acd-efg", true},
		{"mixed case accepted", "Pl-aCd-EfG", true},
		{"leading space rejected", " PL-ACD-EFG", false},
		{"trailing space rejected", "PL-ACD-EFG ", false},
		{"wrong prefix", "XL-ACD-EFG", false},
		{"missing group hyphen", "PL-ACDEFG", false},
		{"hyphen misplaced", "PL-AC-DEFG", false},
		{"excluded letter O", "PL-OCD-EFG", false},
		{"excluded digit 0", "PL-0CD-EFG", false},
		{"excluded letter I", "PL-ACD-EFI", false},
		{"too long", "PL-ACD-EFGH", false},
		{"too short", "PL-ACD-EF", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, code.IsValid(tc.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PL-ACD-EFG", code.Normalize("  pl-acd-efg\n"))

	// Normalize never repairs characters or touches hyphens; a misread
	// zero stays a zero for the corrector to deal with.
	assert.Equal(t, "PL-0CD-EFG", code.Normalize("pl-0cd-efg"))
	assert.Equal(t, "PLACDEFG", code.Normalize("placdefg"))
	assert.Equal(t, "", code.Normalize("   "))
}

func TestExtractAll(t *testing.T) {
	t.Parallel()

	t.Run("embedded in text", func(t *testing.T) {
		t.Parallel()

		text := "meeting notes:\nslides at pl-acd-efg, menu at PL-234-567.\nsee PL-ACD-EFG again"
		got := code.ExtractAll(text)
		require.Equal(t, []string{"PL-ACD-EFG", "PL-234-567"}, got,
			"codes dedup in order of first appearance")
	})

	t.Run("near misses are dropped, not repaired", func(t *testing.T) {
		t.Parallel()

		// S matches the broad shape but fails alphabet membership; 0
		// does not even match the shape. Both are correction input,
		// not extraction output.
		assert.Empty(t, code.ExtractAll("PL-SA9-K2M"))
		assert.Empty(t, code.ExtractAll("PL-0A9-K2M"))
	})

	t.Run("no codes", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, code.ExtractAll(""))
		assert.Empty(t, code.ExtractAll("nothing code shaped in here"))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		text := "PL-ACD-EFG then PL-234-567 then PL-ACD-EFG"
		first := code.ExtractAll(text)
		again := code.ExtractAll(strings.Join(first, "\n"))
		assert.Equal(t, first, again)
	})
}

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usnaveen/paperlink/internal/correct"
)

func TestFindBestMatchExactSkipsEditDistance(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), DefaultMaxDistance)
	fuzzyCalls := 0
	r.distance = func(a, b string) int {
		fuzzyCalls++
		return 99
	}

	// The 0 -> Q repair makes one candidate an exact registry hit.
	m, ok := r.FindBestMatch("PL-0A9-K2M", []string{"PL-QA9-K2M"})
	require.True(t, ok)
	assert.Equal(t, "PL-QA9-K2M", m.Code)
	assert.Equal(t, "PL-QA9-K2M", m.Candidate)
	assert.True(t, m.Exact)
	assert.Zero(t, m.Distance)
	assert.Zero(t, fuzzyCalls, "edit distance must not run when a candidate hits exactly")
}

func TestFindBestMatchFallsBackToEditDistance(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), DefaultMaxDistance)

	// A dropped character is not in the confusion table, so only the
	// fuzzy pass can cover it.
	m, ok := r.FindBestMatch("PL-ACD-EF", []string{"PL-234-567", "PL-ACD-EFG"})
	require.True(t, ok)
	assert.Equal(t, "PL-ACD-EFG", m.Code)
	assert.False(t, m.Exact)
	assert.Equal(t, 1, m.Distance)
}

func TestFindBestMatchRespectsBudget(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), DefaultMaxDistance)
	_, ok := r.FindBestMatch("PL-XXX-XXX", []string{"PL-234-567"})
	assert.False(t, ok, "a best match beyond the budget is no match at all")
}

func TestFindBestMatchZeroBudgetIsExactOnly(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), 0)

	// One character off, not repairable by the table: with a zero
	// budget this never matches, however close it is.
	_, ok := r.FindBestMatch("PL-ACD-EFX", []string{"PL-ACD-EFG"})
	assert.False(t, ok)

	// The exact pass still works with a zero budget.
	m, ok := r.FindBestMatch("PL-0A9-K2M", []string{"PL-QA9-K2M"})
	require.True(t, ok)
	assert.True(t, m.Exact)

	// Negative budgets clamp to zero.
	r = New(correct.Default(), -3)
	_, ok = r.FindBestMatch("PL-ACD-EFX", []string{"PL-ACD-EFG"})
	assert.False(t, ok)
}

func TestFindBestMatchTieKeepsFirstCode(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), DefaultMaxDistance)

	// Both registered codes sit at distance 1 from the scan; whichever
	// comes first in the slice wins, deterministically.
	m, ok := r.FindBestMatch("PL-ACD-EF2", []string{"PL-ACD-EF3", "PL-ACD-EF4"})
	require.True(t, ok)
	assert.Equal(t, "PL-ACD-EF3", m.Code)

	m, ok = r.FindBestMatch("PL-ACD-EF2", []string{"PL-ACD-EF4", "PL-ACD-EF3"})
	require.True(t, ok)
	assert.Equal(t, "PL-ACD-EF4", m.Code)
}

func TestFindBestMatchDegenerateInputs(t *testing.T) {
	t.Parallel()

	r := New(correct.Default(), DefaultMaxDistance)

	_, ok := r.FindBestMatch("PL-ACD-EFG", nil)
	assert.False(t, ok, "an empty registry matches nothing")

	_, ok = r.FindBestMatch("", []string{"PL-ACD-EFG"})
	assert.False(t, ok)

	_, ok = r.FindBestMatch("the whole note, not just the code, ended up in the scan", []string{"PL-ACD-EFG"})
	assert.False(t, ok)
}

func TestFindBestMatchPackageDefault(t *testing.T) {
	t.Parallel()

	m, ok := FindBestMatch("PL-0A9-K2M", []string{"PL-QA9-K2M"})
	require.True(t, ok)
	assert.Equal(t, "PL-QA9-K2M", m.Code)
}

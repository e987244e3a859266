package correct_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usnaveen/paperlink/internal/code"
	"github.com/usnaveen/paperlink/internal/correct"
)

// The alphabet was chosen so that no two members are confusable with
// each other; the table must uphold that, otherwise candidate generation
// would start rewriting characters that were read correctly.
func TestDefaultTableNeverMapsAlphabetToAlphabet(t *testing.T) {
	t.Parallel()

	for from, subs := range correct.Default() {
		if !code.InAlphabet(from) {
			continue
		}
		for _, to := range subs {
			assert.False(t, code.InAlphabet(to),
				"alphabet member %c maps to alphabet member %c", from, to)
		}
	}
}

func TestDefaultTableIsOneDirectional(t *testing.T) {
	t.Parallel()

	table := correct.Default()

	// The entry for L documents L being misread; it exists independently
	// of the entries that repair misreads into L, and neither implies
	// the other.
	assert.Equal(t, []rune{'1', 'I'}, table['L'])
	assert.Equal(t, []rune{'L', 'T'}, table['1'])

	assert.Equal(t, []rune{'Q', 'D'}, table['0'])
	assert.Equal(t, []rune{'5', 'F'}, table['S'])
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "confusions.yaml")
	content := "\"0\": [\"Q\"]\n\"S\": [\"5\", \"F\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := correct.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []rune{'Q'}, table['0'])
	assert.Equal(t, []rune{'5', 'F'}, table['S'])
	assert.NotContains(t, table, 'B', "loaded tables replace the default, they do not merge")
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := correct.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	multi := filepath.Join(t.TempDir(), "multi.yaml")
	require.NoError(t, os.WriteFile(multi, []byte("\"AB\": [\"C\"]\n"), 0o644))
	_, err = correct.Load(multi)
	require.Error(t, err, "multi-character keys have no position to substitute at")

	badValue := filepath.Join(t.TempDir(), "value.yaml")
	require.NoError(t, os.WriteFile(badValue, []byte("\"0\": [\"QD\"]\n"), 0o644))
	_, err = correct.Load(badValue)
	require.Error(t, err)
}

package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioepic-data/trowel/pkg/types"
)

func TestTermsExactMatch(t *testing.T) {
	reference := []string{"soil moisture", "air temperature", "leaf area index"}

	records, err := Terms([]string{"Soil Moisture", "  air temperature "}, reference, Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, rec := range records {
		assert.True(t, rec.MatchFound, "record %d", i)
		assert.Equal(t, types.MatchExact, rec.MatchType)
		assert.Equal(t, float64(100), rec.SimilarityScore)
	}
	// Records carry the original spellings on both sides.
	assert.Equal(t, "Soil Moisture", records[0].SubjectTerm)
	assert.Equal(t, "soil moisture", records[0].MatchedTerm)
}

func TestTermsFuzzyMatch(t *testing.T) {
	reference := []string{"soil moisture", "air temperature"}
	opts := Options{Fuzzy: true, SimilarityThreshold: DefaultSimilarityThreshold}

	records, err := Terms([]string{"soil moistur", "xyz123"}, reference, opts)
	require.NoError(t, err)
	require.Len(t, records, 2)

	typo := records[0]
	assert.True(t, typo.MatchFound)
	assert.Equal(t, types.MatchFuzzy, typo.MatchType)
	assert.Equal(t, "soil moisture", typo.MatchedTerm)
	assert.GreaterOrEqual(t, typo.SimilarityScore, float64(DefaultSimilarityThreshold))

	junk := records[1]
	assert.False(t, junk.MatchFound)
	assert.Equal(t, types.MatchNone, junk.MatchType)
	assert.Empty(t, junk.MatchedTerm)
}

func TestTermsFuzzyDisabled(t *testing.T) {
	records, err := Terms([]string{"soil moistur"}, []string{"soil moisture"}, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].MatchFound)
	assert.Equal(t, types.MatchNone, records[0].MatchType)
}

func TestTermsEmptyReference(t *testing.T) {
	opts := Options{Fuzzy: true, SimilarityThreshold: 80}
	records, err := Terms([]string{"soil moisture", "ph"}, nil, opts)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.False(t, rec.MatchFound)
		assert.Equal(t, types.MatchNone, rec.MatchType)
	}
}

func TestTermsFirstReferenceWinsOnTie(t *testing.T) {
	// Both reference entries normalize identically, so the exact lookup
	// must keep the first listed.
	records, err := Terms([]string{"ph"}, []string{"pH", "PH"}, Options{})
	require.NoError(t, err)
	require.True(t, records[0].MatchFound)
	assert.Equal(t, "pH", records[0].MatchedTerm)
}

func TestTermsIdempotent(t *testing.T) {
	subjects := []string{"Soil Moisture", "soil moistur", "unrelated"}
	reference := []string{"soil moisture", "air temperature"}
	opts := Options{Fuzzy: true, SimilarityThreshold: 80}

	first, err := Terms(subjects, reference, opts)
	require.NoError(t, err)
	second, err := Terms(subjects, reference, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTermsThresholdMonotonic(t *testing.T) {
	subjects := []string{"soil moistur", "soil moist", "soil"}
	reference := []string{"soil moisture"}

	strict, err := Terms(subjects, reference, Options{Fuzzy: true, SimilarityThreshold: 90})
	require.NoError(t, err)
	loose, err := Terms(subjects, reference, Options{Fuzzy: true, SimilarityThreshold: 60})
	require.NoError(t, err)

	for i := range subjects {
		if strict[i].MatchFound {
			assert.True(t, loose[i].MatchFound, "subject %q matched at 90 but not at 60", subjects[i])
		}
	}
}

func TestTermsValidation(t *testing.T) {
	_, err := Terms([]string{"x"}, []string{"x"}, Options{SimilarityThreshold: 101})
	assert.Error(t, err)
	_, err = Terms([]string{"x"}, []string{"x"}, Options{SimilarityThreshold: -1})
	assert.Error(t, err)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, float64(100), Similarity("Soil Moisture", "soil moisture"))
	assert.Equal(t, float64(100), Similarity("ph", "ph"))

	score := Similarity("soil moistur", "soil moisture")
	assert.Greater(t, score, float64(80))
	assert.Less(t, score, float64(100))

	assert.Less(t, Similarity("xyz123", "soil moisture"), float64(40))
}

func TestReadTermsColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.tsv")
	content := "variable\tfrequency\nsoil moisture\t12\n\nair temperature\t8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	terms, err := ReadTermsColumn(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"soil moisture", "air temperature"}, terms)

	withHeader, err := ReadTermsColumn(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"variable", "soil moisture", "air temperature"}, withHeader)
}

func TestReadTermList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.txt")
	content := "soil moisture\n\n  air temperature  \nleaf area index\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	terms, err := ReadTermList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"soil moisture", "air temperature", "leaf area index"}, terms)
}

func TestReadTermsColumnMissingFile(t *testing.T) {
	_, err := ReadTermsColumn(filepath.Join(t.TempDir(), "nope.tsv"), false)
	assert.Error(t, err)
}

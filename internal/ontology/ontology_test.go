package ontology

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"https://w3id.org/bervo/BERVO_00000123", "BERVO:00000123"},
		{"http://purl.obolibrary.org/obo/ENVO_00002006", "ENVO:00002006"},
		{"http://purl.obolibrary.org/obo/CHEBI_15377", "CHEBI:15377"},
		{"https://example.org/not/an/obo/term", "https://example.org/not/an/obo/term"},
		{"ENVO:00002006", "ENVO:00002006"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompressURI(tt.uri), tt.uri)
	}
}

func TestExpandCURIE(t *testing.T) {
	assert.Equal(t, "https://w3id.org/bervo/BERVO_00000123", ExpandCURIE("BERVO:00000123"))
	assert.Equal(t, "http://purl.obolibrary.org/obo/ENVO_00002006", ExpandCURIE("ENVO:00002006"))
	assert.Equal(t, "no-prefix", ExpandCURIE("no-prefix"))
}

func TestCuriePrefix(t *testing.T) {
	assert.Equal(t, "ENVO", curiePrefix("ENVO:00002006", "fallback"))
	assert.Equal(t, "fallback", curiePrefix("nocolon", "fallback"))
}

func TestBuiltinCatalog(t *testing.T) {
	catalog := Builtin()

	for _, id := range []string{"bervo", "envo", "chebi", "ncbitaxon", "como", "po", "mixs"} {
		_, ok := catalog[id]
		assert.True(t, ok, "missing catalog entry %s", id)
	}

	assert.Equal(t, KindRemoteCatalog, catalog["bervo"].Kind)
	assert.Equal(t, "BERVO", catalog["bervo"].Acronym)
	assert.Equal(t, KindLocalIndex, catalog["envo"].Kind)
	assert.Equal(t, "envo.db", catalog["envo"].Index)
}

func TestCatalogMergeAndIDs(t *testing.T) {
	catalog := Catalog{"envo": {Kind: KindLocalIndex, Index: "envo.db"}}
	catalog.Merge(Catalog{
		"GO":   {Kind: KindLocalIndex, Index: "go.db"},
		"envo": {Kind: KindRemoteCatalog, Acronym: "ENVO"},
	})

	assert.Equal(t, []string{"envo", "go"}, catalog.IDs())
	assert.Equal(t, KindRemoteCatalog, catalog["envo"].Kind)
}

func TestOpenUnknownOntology(t *testing.T) {
	_, err := Open(Builtin(), "no-such-ontology", ClientOptions{HTTPClient: http.DefaultClient})
	require.Error(t, err)

	var unknown *UnknownOntologyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "no-such-ontology", unknown.ID)
}

func TestOpenSelectors(t *testing.T) {
	opts := ClientOptions{HTTPClient: http.DefaultClient}

	s, err := Open(Builtin(), "bioportal:SWEET", opts)
	require.NoError(t, err)
	assert.IsType(t, &bioportalClient{}, s)

	s, err = Open(Builtin(), "ols:", opts)
	require.NoError(t, err)
	assert.IsType(t, &olsClient{}, s)

	// Empty acronym is not a valid selector.
	_, err = Open(Builtin(), "bioportal:", opts)
	assert.Error(t, err)
}

func TestParseSelectorSQLite(t *testing.T) {
	spec, id, ok := parseSelector("sqlite:obo:envo")
	require.True(t, ok)
	assert.Equal(t, KindLocalIndex, spec.Kind)
	assert.Equal(t, "envo.db", spec.Index)
	assert.Equal(t, "envo", id)

	_, _, ok = parseSelector("sqlite:obo:")
	assert.False(t, ok)
	_, _, ok = parseSelector("gibberish")
	assert.False(t, ok)
}

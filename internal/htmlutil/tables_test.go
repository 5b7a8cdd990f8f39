package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `
<html><body>
<script>var x = "ignore me";</script>
<p>Displaying 1 - 2 of 50</p>
<table>
  <tr><th>Scientific Name</th><th> Observations </th></tr>
  <tr><td>Pinus taeda</td><td>120</td></tr>
  <tr><td>Quercus alba</td><td>85</td></tr>
</table>
<table>
  <tr><th>Year</th><th>Citation</th></tr>
  <tr><td>2020</td><td>Doe et al.</td></tr>
</table>
</body></html>`

func TestParseTables(t *testing.T) {
	tables, err := ParseTables(strings.NewReader(samplePage))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, []string{"Scientific Name", "Observations"}, tables[0].Header())
	assert.Equal(t, []string{"Pinus taeda", "120"}, []string(tables[0][1]))
	assert.Equal(t, []string{"Year", "Citation"}, tables[1].Header())
}

func TestParseTablesNested(t *testing.T) {
	page := `<table><tr><th>Outer</th></tr><tr><td>
		<table><tr><th>Inner</th></tr><tr><td>x</td></tr></table>
	</td></tr></table>`
	tables, err := ParseTables(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"Outer"}, tables[0].Header())
	assert.Equal(t, []string{"Inner"}, tables[1].Header())
}

func TestFindTable(t *testing.T) {
	tables, err := ParseTables(strings.NewReader(samplePage))
	require.NoError(t, err)

	species := FindTable(tables, "scientific name", "observations")
	require.NotNil(t, species)
	assert.Equal(t, "Pinus taeda", species[1][0])

	sources := FindTable(tables, "year", "citation")
	require.NotNil(t, sources)

	assert.Nil(t, FindTable(tables, "no such header"))
}

func TestRowMap(t *testing.T) {
	header := []string{"Scientific Name", "Observations", "Extra"}
	m := RowMap(header, []string{"Pinus taeda", " 120 "})
	assert.Equal(t, "Pinus taeda", m["scientific name"])
	assert.Equal(t, "120", m["observations"])
	assert.Equal(t, "", m["extra"])
}

func TestTextLines(t *testing.T) {
	lines, err := TextLines(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Contains(t, lines, "Displaying 1 - 2 of 50")
	for _, line := range lines {
		assert.NotContains(t, line, "ignore me")
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "trait category", NormalizeHeader("  Trait \n Category "))
	assert.Equal(t, "observations", NormalizeHeader("Observations"))
}

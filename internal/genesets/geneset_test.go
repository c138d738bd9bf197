package genesets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGMT = "TERM_A\tApoptosis\tTP53\tBAX\tBCL2\n" +
	"TERM_B\t\tEGFR\n" +
	"TERM_C\tshort\n" +
	"\n" +
	"TERM_D\tLarge set\tG1\tG2\tG3\tG4\tG5\n"

func TestParseGMT(t *testing.T) {
	c, err := ParseGMT(strings.NewReader(testGMT), "test")
	require.NoError(t, err)

	assert.Equal(t, "test", c.Name)
	assert.Equal(t, []string{"TERM_A", "TERM_B", "TERM_D"}, c.IDs())

	a, ok := c.Get("TERM_A")
	require.True(t, ok)
	assert.Equal(t, "Apoptosis", a.Name)
	assert.Equal(t, "Apoptosis", a.Description)
	assert.Equal(t, "test", a.Ontology)
	assert.Equal(t, []string{"BAX", "BCL2", "TP53"}, a.SortedGenes())
	assert.True(t, a.Contains("TP53"))
	assert.False(t, a.Contains("EGFR"))

	b, _ := c.Get("TERM_B")
	assert.Equal(t, "TERM_B", b.Name, "empty description falls back to the ID")
	assert.False(t, c.Has("TERM_C"))
}

func TestParseGMT_RepeatedTermReplaces(t *testing.T) {
	c, err := ParseGMT(strings.NewReader("T1\tfirst\tA\nT2\tx\tB\nT1\tsecond\tC\n"), "dup")
	require.NoError(t, err)

	assert.Equal(t, []string{"T1", "T2"}, c.IDs())
	t1, _ := c.Get("T1")
	assert.Equal(t, "second", t1.Name)
	assert.Equal(t, []string{"C"}, t1.SortedGenes())
}

func TestFilterBySize(t *testing.T) {
	c, err := ParseGMT(strings.NewReader(testGMT), "test")
	require.NoError(t, err)

	f := c.FilterBySize(2, 4)
	assert.Equal(t, []string{"TERM_A"}, f.IDs())
	assert.Equal(t, "test", f.Name)
	assert.Equal(t, 3, c.Len(), "original collection is unchanged")

	assert.Equal(t, 3, c.FilterBySize(1, 5).Len(), "bounds are inclusive")
	assert.Equal(t, 0, c.FilterBySize(6, 10).Len())
}

func TestAllGenes(t *testing.T) {
	c := FromMap("custom", map[string][]string{
		"b": {"X", "Y"},
		"a": {"Y", "Z"},
	})
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.Len(t, c.AllGenes(), 3)

	a, _ := c.Get("a")
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "custom", a.Ontology)
}

func TestWriteGMT_RoundTrip(t *testing.T) {
	c, err := ParseGMT(strings.NewReader(testGMT), "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteGMT(&buf))
	assert.Contains(t, buf.String(), "TERM_A\tApoptosis\tBAX\tBCL2\tTP53\n")

	back, err := ParseGMT(&buf, "test")
	require.NoError(t, err)
	require.Equal(t, c.IDs(), back.IDs())
	for _, gs := range c.Sets() {
		other, _ := back.Get(gs.ID)
		assert.Equal(t, gs.Genes, other.Genes, gs.ID)
	}
}

func TestLoadGMT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "h.all.v2023.gmt")
	require.NoError(t, os.WriteFile(path, []byte(testGMT), 0o644))

	c, err := LoadGMT(path, "")
	require.NoError(t, err)
	assert.Equal(t, "h.all.v2023", c.Name)
	assert.Equal(t, 3, c.Len())

	c, err = LoadGMT(path, "Hallmark")
	require.NoError(t, err)
	assert.Equal(t, "Hallmark", c.Name)

	_, err = LoadGMT(filepath.Join(dir, "missing.gmt"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitByPrefix(t *testing.T) {
	c := FromMap("msigdb", map[string][]string{
		"HALLMARK_APOPTOSIS":  {"TP53"},
		"KEGG_CELL_CYCLE":     {"CDK1"},
		"HALLMARK_HYPOXIA":    {"HIF1A"},
		"CUSTOM_SET":          {"A"},
		"NOPREFIX":            {"B"},
		"REACTOME_DNA_REPAIR": {"BRCA1"},
	})

	parts := SplitByPrefix(c)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.Name)
	}
	// FromMap orders by ID: CUSTOM_, HALLMARK_, KEGG_, NOPREFIX, REACTOME_
	assert.Equal(t, []string{"CUSTOM", "Hallmark", "KEGG Pathway", "OTHER", "Reactome Pathway"}, names)

	assert.Equal(t, 2, parts[1].Len())
	hyp, ok := parts[1].Get("HALLMARK_HYPOXIA")
	require.True(t, ok)
	assert.Equal(t, "Hallmark", hyp.Ontology)

	orig, _ := c.Get("HALLMARK_HYPOXIA")
	assert.Equal(t, "msigdb", orig.Ontology, "source collection is unchanged")
}

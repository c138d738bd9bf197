package genes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:  "GTF attributes",
			input: `gene_id "ENSG00000133703"; gene_type "protein_coding"; gene_name "KRAS";`,
			expected: map[string]string{
				"gene_id":   "ENSG00000133703",
				"gene_type": "protein_coding",
				"gene_name": "KRAS",
			},
		},
		{
			name:  "GFF3 attributes",
			input: `ID=gene:ENSG00000141510;Name=TP53;biotype=protein_coding`,
			expected: map[string]string{
				"ID":      "gene:ENSG00000141510",
				"Name":    "TP53",
				"biotype": "protein_coding",
			},
		},
		{
			name:  "repeated tags",
			input: `gene_id "G1"; tag "basic"; tag "MANE_Select";`,
			expected: map[string]string{
				"gene_id": "G1",
				"tag":     "MANE_Select", // Last value wins
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseAttributes(tt.input)
			for key, want := range tt.expected {
				assert.Equal(t, want, result[key], "parseAttributes()[%q]", key)
			}
		})
	}
}

func TestStripVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ENSG00000133703.14", "ENSG00000133703"},
		{"ENSG00000133703", "ENSG00000133703"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripVersion(tt.input), "stripVersion(%q)", tt.input)
	}
}

func TestParseStrand(t *testing.T) {
	assert.Equal(t, int8(1), parseStrand("+"))
	assert.Equal(t, int8(-1), parseStrand("-"))
	assert.Equal(t, int8(1), parseStrand("."))
}

const testGTF = `##description: test
chr12	HAVANA	gene	25205246	25250929	.	-	.	gene_id "ENSG00000133703.14"; gene_type "protein_coding"; gene_name "KRAS";
chr12	HAVANA	transcript	25205246	25250929	.	-	.	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936"; gene_name "KRAS";
chr7	HAVANA	gene	55019017	55211628	.	+	.	gene_id "ENSG00000146648.21"; gene_name "EGFR";
chr7	HAVANA	gene	100	200	.	+	.	gene_id "ENSG00000146648.21"; gene_name "EGFR_DUP";
chr1	HAVANA	gene	1000	2000	.	+	.	gene_id "ENSG00000000001.1";
chr1	HAVANA	gene	notanumber	2000	.	+	.	gene_id "BAD";
chr1	HAVANA	gene	3000	4000	.	+	.	gene_name "NOID";
chr1	short	line
`

func TestGTFLoader_ParseGTF(t *testing.T) {
	loader := NewGTFLoader("", LoadOptions{StripVersion: true})
	s := NewStore()

	stats, err := loader.parseGTF(strings.NewReader(testGTF), s)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Loaded)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 3, stats.Skipped)
	require.Equal(t, 3, s.Len())

	kras, ok := s.Get("ENSG00000133703")
	require.True(t, ok)
	assert.Equal(t, "KRAS", kras.Name)
	assert.Equal(t, "chr12", kras.Chrom)
	assert.Equal(t, int8(-1), kras.Strand)
	assert.Equal(t, 25250928, kras.TSS, "reverse-strand TSS is the last base")

	egfr, ok := s.Get("ENSG00000146648")
	require.True(t, ok)
	assert.Equal(t, "EGFR", egfr.Name, "first occurrence is kept")
	assert.Equal(t, 55019016, egfr.TSS, "forward-strand TSS is the 0-based start")

	unnamed, ok := s.Get("ENSG00000000001")
	require.True(t, ok)
	assert.Equal(t, "ENSG00000000001", unnamed.Name, "name defaults to ID")

	// load order is preserved
	ids := make([]string, 0, s.Len())
	for _, g := range s.Genes() {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"ENSG00000133703", "ENSG00000146648", "ENSG00000000001"}, ids)
}

func TestGTFLoader_FeatureTypeAndAttrs(t *testing.T) {
	gff := "chr1\tsrc\tmRNA\t11\t20\t.\t+\t.\tID=tx1;gene=ABC\n" +
		"chr1\tsrc\tgene\t11\t20\t.\t+\t.\tID=g1;gene=XYZ\n"

	loader := NewGTFLoader("", LoadOptions{FeatureType: "mRNA", IDAttr: "ID", NameAttr: "gene"})
	s := NewStore()
	_, err := loader.parseGTF(strings.NewReader(gff), s)
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	g, ok := s.Get("tx1")
	require.True(t, ok)
	assert.Equal(t, "ABC", g.Name)
	assert.Equal(t, 10, g.TSS)
}

func TestLoadGTF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genes.gtf")
	require.NoError(t, os.WriteFile(path, []byte(testGTF), 0o644))

	s, err := LoadGTF(path, LoadOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, StatePositions, s.State())

	_, ok := s.Get("ENSG00000133703.14")
	assert.True(t, ok, "versions are kept unless stripped")
}

func TestLoadGTF_NoGenes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.gtf")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), 0o644))

	_, err := LoadGTF(path, LoadOptions{}, nil)
	assert.ErrorIs(t, err, ErrInvalidAnnotation)
}

func TestLoadGTF_Missing(t *testing.T) {
	_, err := LoadGTF(filepath.Join(t.TempDir(), "missing.gtf"), LoadOptions{}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBED(t *testing.T) {
	bed := `track name=genes
chr1	9999	12000	GENE1	0	+
chr1	40000	50000	GENE2	0	-
chr2	100	200	GENE3
chr2	100	200
chr2	abc	200	BAD
chr1	9999	12000	GENE1	0	-
`
	dir := t.TempDir()
	path := filepath.Join(dir, "genes.bed")
	require.NoError(t, os.WriteFile(path, []byte(bed), 0o644))

	s, err := LoadBED(path, nil)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	g1, _ := s.Get("GENE1")
	assert.Equal(t, 9999, g1.TSS)
	assert.Equal(t, int8(1), g1.Strand)

	g2, _ := s.Get("GENE2")
	assert.Equal(t, 49999, g2.TSS)
	assert.Equal(t, "-", g2.StrandSymbol())

	g3, _ := s.Get("GENE3")
	assert.Equal(t, "+", g3.StrandSymbol(), "strand defaults to +")
}

func TestLoadBED_NoGenes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genes.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t1\t2\n"), 0o644))

	_, err := LoadBED(path, nil)
	assert.ErrorIs(t, err, ErrInvalidAnnotation)
}

func TestLoadChromSizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hg38.chrom.sizes")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t248956422\nchr2 242193529\n\n# c\n"), 0o644))

	sizes, err := LoadChromSizes(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chr1": 248956422, "chr2": 242193529}, sizes)

	require.NoError(t, os.WriteFile(path, []byte("chr1\tbig\n"), 0o644))
	_, err = LoadChromSizes(path)
	assert.Error(t, err)
}

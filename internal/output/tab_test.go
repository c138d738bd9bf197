package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gogreat/internal/fileio"
	"github.com/inodb/gogreat/internal/result"
)

func testRecords() []result.FlatRecord {
	return []result.FlatRecord{
		{
			Ontology: "GO BP", TermID: "GO:0006915", TermName: "apoptotic process",
			BinomRank: 1, BinomP: 2.5e-08, BinomBonferroni: 5e-08, BinomFDR: 5e-08, BinomFoldEnrichment: 3,
			ObservedRegions: 30, ExpectedRegions: 10, GenomeFraction: 0.1,
			HyperRank: 1.5, HyperP: 0.01, HyperBonferroni: 0.02, HyperFDR: 0.01, HyperFoldEnrichment: 2,
			ObservedGenes: 4, ExpectedGenes: 2, TotalGenes: 40,
		},
		{Ontology: "GO BP", TermID: "GO:0005634", TermName: "nucleus", BinomRank: 2, BinomP: 1, HyperRank: 1.5, HyperP: 0.01},
	}
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf, false)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, strings.Join(result.Columns, "\t")+"\n", buf.String())
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf, false)

	require.NoError(t, w.WriteAll(testRecords()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, len(result.Columns))
	assert.Equal(t, []string{
		"GO:0006915", "apoptotic process", "1", "2.5e-08", "5e-08", "5e-08", "3",
		"30", "10", "0.1", "1.5", "0.01", "0.02", "0.01", "2", "4", "2", "40",
	}, fields)
}

func TestTabWriter_WithOntology(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf, true)
	require.NoError(t, w.WriteAll(testRecords()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ontology\tterm_id\t"))
	assert.True(t, strings.HasPrefix(lines[2], "GO BP\tGO:0005634\tnucleus\t2\t1\t"))
	assert.Len(t, result.Columns, 18, "header prefix does not alias the shared column list")
}

func TestWriteAssociations(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAssociations(&buf, []result.Association{
		{Region: "chr1:20000-21000", GeneID: "g1", GeneName: "GENE1", Chrom: "chr1", TSS: 10000},
	})
	require.NoError(t, err)
	assert.Equal(t, "region\tgene_id\tgene_name\tchrom\ttss\nchr1:20000-21000\tg1\tGENE1\tchr1\t10000\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummary(&buf, []result.TableSummary{
		{Ontology: "GO BP", Terms: 3, SignificantBinom: 2, SignificantHyper: 1, SignificantBoth: 1, TopTermID: "T1", TopTermName: "one", TopTermBinomialP: 0.001},
		{Ontology: "empty"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "GO BP\t3\t2\t1\t1\tT1\tone\t0.001", lines[1])
	assert.Equal(t, "empty\t0\t0\t0\t0\t-\t-\t-", lines[2])
}

func TestCreate_Compressed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.tsv", "out.tsv.gz", "out.tsv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			w, err := Create(path)
			require.NoError(t, err)
			require.NoError(t, NewTabWriter(w, true).WriteAll(testRecords()))
			require.NoError(t, w.Close())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			if name != "out.tsv" {
				assert.False(t, strings.HasPrefix(string(raw), "ontology"), "output is compressed")
			}

			r, err := fileio.Open(path)
			require.NoError(t, err)
			defer r.Close()
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "ontology\tterm_id"))
			assert.Equal(t, 3, strings.Count(string(data), "\n"))
		})
	}
}

func TestCreate_BadPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.tsv"))
	assert.Error(t, err)
}

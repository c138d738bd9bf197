package genes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows replays fixed rows through the rowScanner interface.
type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestScanGeneRows(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		{"NM_000546.6", "TP53", "chr17", "-", 7668401, 7687550},
		{"NM_005228.5", "EGFR", "chr7", "+", 55019016, 55211628},
		{"NM_000546.6", "TP53", "chr17", "-", 7668401, 7687490},
		{"NM_bad", "", "chr1", "+", 100, 100},
		{"NR_001", "", "chr1", "+", 10, 20},
	}}

	s := NewStore()
	stats, err := scanGeneRows(rows, s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 3, Duplicates: 1, Skipped: 1}, stats)

	tp53, ok := s.Get("NM_000546.6")
	require.True(t, ok)
	assert.Equal(t, "TP53", tp53.Name)
	assert.Equal(t, 7687549, tp53.TSS)

	egfr, _ := s.Get("NM_005228.5")
	assert.Equal(t, 55019016, egfr.TSS)

	nr, _ := s.Get("NR_001")
	assert.Equal(t, "NR_001", nr.Name, "empty symbol falls back to name")
}

func TestScanGeneRows_Error(t *testing.T) {
	rows := &fakeRows{err: errors.New("connection reset")}
	_, err := scanGeneRows(rows, NewStore())
	assert.EqualError(t, err, "connection reset")
}

func TestScanChromSizeRows(t *testing.T) {
	rows := &fakeRows{rows: [][]any{{"chr1", 248956422}, {"chrM", 16569}}}
	sizes, err := scanChromSizeRows(rows)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"chr1": 248956422, "chrM": 16569}, sizes)
}

func TestUCSCConfig(t *testing.T) {
	cfg := UCSCConfig{Genome: "hg38", SymbolColumn: "name2"}.withDefaults()
	assert.Equal(t, DefaultUCSCTable, cfg.Table)
	assert.Equal(t, "SELECT name, name2, chrom, strand, txStart, txEnd FROM ncbiRefSeq", cfg.geneQuery())

	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "genome@tcp(genome-mysql.soe.ucsc.edu:3306)/hg38"), dsn)

	plain := UCSCConfig{Genome: "mm10", Table: "knownGene"}
	assert.Equal(t, "SELECT name, name, chrom, strand, txStart, txEnd FROM knownGene", plain.geneQuery())
}

func TestUCSCImporter_RejectsBadIdentifiers(t *testing.T) {
	tests := []UCSCConfig{
		{Genome: "hg38; DROP TABLE x", Table: "knownGene"},
		{Genome: "hg38", Table: "knownGene WHERE 1=1"},
		{Genome: "hg38", Table: "knownGene", SymbolColumn: "name2,"},
	}
	for _, cfg := range tests {
		u := NewUCSCImporter(cfg)
		err := u.Load(context.Background(), NewStore())
		assert.ErrorContains(t, err, "invalid UCSC")
	}
}

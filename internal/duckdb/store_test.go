package duckdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/result"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *result.Result {
	res := result.New(result.Metadata{
		Rule: "basalPlusExt", Upstream: 5000, Downstream: 1000, MaxExtension: 1_000_000,
		NRegions: 3, NGenesHit: 2, NGenes: 10,
	})
	res.AddTable(&result.Table{Ontology: "GO Biological Process", Records: []result.Record{
		{TermID: "GO:0001", TermName: "growth", BinomRank: 1, BinomP: 0.001, BinomBonferroni: 0.002,
			BinomFDR: 0.002, BinomFoldEnrichment: 4.5, ObservedRegions: 3, ExpectedRegions: 0.66,
			GenomeFraction: 0.22, HyperRank: 1.5, HyperP: 0.2, HyperBonferroni: 0.4, HyperFDR: 0.2,
			HyperFoldEnrichment: 2, ObservedGenes: 2, ExpectedGenes: 1, TotalGenes: 5},
		{TermID: "GO:0002", TermName: "death", BinomRank: 2, BinomP: 0.5, BinomBonferroni: 1,
			BinomFDR: 0.5, ObservedRegions: 1, ExpectedRegions: 1.2, GenomeFraction: 0.4,
			HyperRank: 1.5, HyperP: 0.2, HyperBonferroni: 0.4, HyperFDR: 0.2,
			ObservedGenes: 1, ExpectedGenes: 1.5, TotalGenes: 7},
	}})
	res.AddTable(&result.Table{Ontology: "Hallmark", Records: []result.Record{
		{TermID: "HALLMARK_HYPOXIA", TermName: "HALLMARK_HYPOXIA", BinomRank: 1, BinomP: 0.03,
			BinomBonferroni: 0.03, BinomFDR: 0.03, ObservedRegions: 2, HyperRank: 1, HyperP: 0.1,
			ObservedGenes: 1, TotalGenes: 3},
	}})
	res.Associations = []result.Association{
		{Region: "chr1:100-200", GeneID: "g1", GeneName: "A", Chrom: "chr1", TSS: 150},
		{Region: "chr1:900-950", GeneID: "g2", GeneName: "B", Chrom: "chr1", TSS: 1000},
	}
	return res
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndLoadRun(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	want := sampleResult()

	id, err := s.WriteRun(ctx, "peaks", want)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want.Metadata, got.Metadata)
	assert.Equal(t, want.Ontologies(), got.Ontologies())
	for _, wt := range want.Tables() {
		gt, ok := got.Table(wt.Ontology)
		require.True(t, ok, wt.Ontology)
		assert.Equal(t, wt.Records, gt.Records)
	}
	assert.Equal(t, want.Associations, got.Associations)
}

func TestRuns(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, "first", sampleResult())
	require.NoError(t, err)
	id2, err := s.WriteRun(ctx, "second", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Label)
	assert.Equal(t, "first", runs[1].Label)
	assert.Equal(t, 10, runs[0].Metadata.NGenes)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestLoadRun_Missing(t *testing.T) {
	s := openInMemory(t)
	_, err := s.LoadRun(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSearchTerms(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	id, err := s.WriteRun(ctx, "peaks", sampleResult())
	require.NoError(t, err)

	hits, err := s.SearchTerms(ctx, "%GROWTH%", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].RunID)
	assert.Equal(t, "GO:0001", hits[0].Record.TermID)
	assert.Equal(t, "GO Biological Process", hits[0].Record.Ontology)

	hits, err = s.SearchTerms(ctx, "GO:%", 0.01)
	require.NoError(t, err)
	require.Len(t, hits, 1, "FDR threshold applies")

	hits, err = s.SearchTerms(ctx, "%", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestDeleteRun(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	id, err := s.WriteRun(ctx, "peaks", sampleResult())
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, id))
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM results").Scan(&n))
	assert.Zero(t, n)
}

func TestWriteRun_NoAssociations(t *testing.T) {
	s := openInMemory(t)
	res := sampleResult()
	res.Associations = nil

	id, err := s.WriteRun(context.Background(), "", res)
	require.NoError(t, err)
	got, err := s.LoadRun(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.Associations)
}

// --- Domain cache tests ---

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func domainStore(t *testing.T) *genes.Store {
	t.Helper()
	s := genes.NewStore()
	s.SetChromSizes(map[string]int{"chr1": 1_000_000})
	s.Add(&genes.Gene{ID: "g1", Name: "A", Chrom: "chr1", TSS: 10_000, Strand: 1})
	s.Add(&genes.Gene{ID: "g2", Name: "B", Chrom: "chr1", TSS: 50_000, Strand: -1})
	require.NoError(t, s.ComputeDomains(genes.DefaultDomainParams()))
	return s
}

func gtfSource(t *testing.T, path string) DomainSource {
	t.Helper()
	annot, err := StatFile(path)
	require.NoError(t, err)
	return DomainSource{Annotation: annot, Format: "gtf", Options: genes.DefaultLoadOptions()}
}

func TestDomainCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := gtfSource(t, writeFile(t, dir, "genes.gtf", "x"))

	dc := NewDomainCache(filepath.Join(dir, "cache"))
	params := genes.DefaultDomainParams()
	assert.False(t, dc.Valid(src, params))

	store := domainStore(t)
	require.NoError(t, dc.Write(store, src))
	assert.True(t, dc.Valid(src, params))

	other := params
	other.MaxExtension = 10
	assert.False(t, dc.Valid(src, other), "params are part of the key")

	loaded, err := dc.Load()
	require.NoError(t, err)
	assert.Equal(t, genes.StateDomainsComputed, loaded.State())
	assert.Equal(t, store.Params(), loaded.Params())
	require.Equal(t, store.Len(), loaded.Len())
	for _, g := range store.Genes() {
		lg, ok := loaded.Get(g.ID)
		require.True(t, ok)
		assert.Equal(t, *g, *lg)
	}

	dc.Clear()
	assert.False(t, dc.Valid(src, params))
}

func TestDomainCache_StaleSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "genes.gtf", "x")
	src := gtfSource(t, path)

	dc := NewDomainCache(dir)
	require.NoError(t, dc.Write(domainStore(t), src))

	writeFile(t, dir, "genes.gtf", "longer content")
	assert.False(t, dc.Valid(gtfSource(t, path), genes.DefaultDomainParams()))
}

func TestDomainCache_LoaderSettings(t *testing.T) {
	dir := t.TempDir()
	src := gtfSource(t, writeFile(t, dir, "genes.gtf", "x"))
	params := genes.DefaultDomainParams()

	dc := NewDomainCache(filepath.Join(dir, "cache"))
	require.NoError(t, dc.Write(domainStore(t), src))
	require.True(t, dc.Valid(src, params))

	tests := []struct {
		name   string
		modify func(*DomainSource)
	}{
		{"feature type", func(s *DomainSource) { s.Options.FeatureType = "transcript" }},
		{"id attribute", func(s *DomainSource) { s.Options.IDAttr = "transcript_id" }},
		{"name attribute", func(s *DomainSource) { s.Options.NameAttr = "gene_symbol" }},
		{"strip version", func(s *DomainSource) { s.Options.StripVersion = true }},
		{"format", func(s *DomainSource) { s.Format = "bed" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := src
			tt.modify(&changed)
			assert.False(t, dc.Valid(changed, params))
		})
	}
}

func TestDomainCache_SameStatDifferentPath(t *testing.T) {
	dir := t.TempDir()
	first := gtfSource(t, writeFile(t, dir, "a.gtf", "same"))
	second := gtfSource(t, writeFile(t, dir, "b.gtf", "same"))
	second.Annotation.ModTime = first.Annotation.ModTime

	dc := NewDomainCache(filepath.Join(dir, "cache"))
	require.NoError(t, dc.Write(domainStore(t), first))
	assert.False(t, dc.Valid(second, genes.DefaultDomainParams()))
}

func TestStatFile_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "genes.gtf", "abc")
	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(fp.Path))
	assert.Equal(t, int64(3), fp.Size)

	zero, err := StatFile("")
	require.NoError(t, err)
	assert.Equal(t, FileFingerprint{}, zero)
}

func TestDomainCache_RequiresDomains(t *testing.T) {
	s := genes.NewStore()
	s.Add(&genes.Gene{ID: "g1", Chrom: "chr1", TSS: 1, Strand: 1})
	err := NewDomainCache(t.TempDir()).Write(s, DomainSource{})
	assert.ErrorIs(t, err, genes.ErrDomainsNotComputed)
}

// Package result holds the enrichment tables produced by an analysis.
package result

// Record is one tested term. Field order is the export column order.
type Record struct {
	TermID              string
	TermName            string
	BinomRank           int
	BinomP              float64
	BinomBonferroni     float64
	BinomFDR            float64
	BinomFoldEnrichment float64
	ObservedRegions     int
	ExpectedRegions     float64
	GenomeFraction      float64
	HyperRank           float64 // average rank for tied p-values
	HyperP              float64
	HyperBonferroni     float64
	HyperFDR            float64
	HyperFoldEnrichment float64
	ObservedGenes       int
	ExpectedGenes       float64
	TotalGenes          int
}

// FlatRecord is a Record tagged with the ontology it came from.
type FlatRecord struct {
	Ontology            string
	TermID              string
	TermName            string
	BinomRank           int
	BinomP              float64
	BinomBonferroni     float64
	BinomFDR            float64
	BinomFoldEnrichment float64
	ObservedRegions     int
	ExpectedRegions     float64
	GenomeFraction      float64
	HyperRank           float64
	HyperP              float64
	HyperBonferroni     float64
	HyperFDR            float64
	HyperFoldEnrichment float64
	ObservedGenes       int
	ExpectedGenes       float64
	TotalGenes          int
}

// Columns lists the export column names in order.
var Columns = []string{
	"term_id",
	"term_name",
	"binom_rank",
	"binom_p",
	"binom_bonferroni",
	"binom_fdr",
	"binom_fold_enrichment",
	"observed_regions",
	"expected_regions",
	"genome_fraction",
	"hyper_rank",
	"hyper_p",
	"hyper_bonferroni",
	"hyper_fdr",
	"hyper_fold_enrichment",
	"observed_genes",
	"expected_genes",
	"total_genes",
}

// Association is one region-gene row of an analysis.
type Association struct {
	Region   string
	GeneID   string
	GeneName string
	Chrom    string
	TSS      int
}

// Metadata describes the parameters and input sizes of an analysis.
type Metadata struct {
	Rule         string
	Upstream     int
	Downstream   int
	MaxExtension int
	NRegions     int
	NGenesHit    int
	NGenes       int
}

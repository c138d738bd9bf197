// Package genes holds gene TSS positions and computes GREAT regulatory domains.
package genes

// Gene is a gene's transcription start site and its regulatory domain.
type Gene struct {
	ID       string // Unique gene identifier (e.g., ENSG00000133703)
	Name     string // Gene symbol (e.g., KRAS); defaults to ID
	Chrom    string // Chromosome
	TSS      int    // Transcription start site (0-based)
	Strand   int8   // +1 (forward) or -1 (reverse)
	RegStart int    // Regulatory domain start (0-based, inclusive)
	RegEnd   int    // Regulatory domain end (exclusive)
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == 1
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == -1
}

// StrandSymbol returns "+" or "-".
func (g *Gene) StrandSymbol() string {
	if g.IsReverseStrand() {
		return "-"
	}
	return "+"
}

// DomainLen returns the width of the regulatory domain.
func (g *Gene) DomainLen() int {
	return g.RegEnd - g.RegStart
}

// Overlaps reports whether the half-open interval [start, end) overlaps the
// gene's regulatory domain.
func (g *Gene) Overlaps(start, end int) bool {
	return start < g.RegEnd && end > g.RegStart
}

// tssFromFeature derives the TSS from a 0-based half-open feature.
func tssFromFeature(start, end int, strand int8) int {
	if strand == -1 {
		return end - 1
	}
	return start
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

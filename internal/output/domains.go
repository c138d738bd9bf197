package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/genes"
)

var domainColumns = []string{"chrom", "reg_start", "reg_end", "gene_id", "gene_name", "tss", "strand"}

// WriteDomains writes one regulatory domain per gene as a BED-like TSV
// with a commented header, so the output loads as BED.
func WriteDomains(w io.Writer, gs []*genes.Gene) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#" + strings.Join(domainColumns, "\t") + "\n"); err != nil {
		return err
	}
	for _, g := range gs {
		strand := "+"
		if g.IsReverseStrand() {
			strand = "-"
		}
		line := strings.Join([]string{
			g.Chrom,
			strconv.Itoa(g.RegStart),
			strconv.Itoa(g.RegEnd),
			g.ID,
			g.Name,
			strconv.Itoa(g.TSS),
			strand,
		}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

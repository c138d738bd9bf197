package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/result"
)

var associationColumns = []string{"region", "gene_id", "gene_name", "chrom", "tss"}

// WriteAssociations writes region-gene association rows as TSV.
func WriteAssociations(w io.Writer, rows []result.Association) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(associationColumns, "\t") + "\n"); err != nil {
		return err
	}
	for _, a := range rows {
		line := strings.Join([]string{a.Region, a.GeneID, a.GeneName, a.Chrom, strconv.Itoa(a.TSS)}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var summaryColumns = []string{
	"ontology", "terms", "significant_binom", "significant_hyper", "significant_both",
	"top_term_id", "top_term_name", "top_term_binom_p",
}

// WriteSummary writes per-ontology counts as TSV.
func WriteSummary(w io.Writer, rows []result.TableSummary) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(summaryColumns, "\t") + "\n"); err != nil {
		return err
	}
	for _, s := range rows {
		top := "-"
		if s.TopTermID != "" {
			top = formatFloat(s.TopTermBinomialP)
		}
		line := strings.Join([]string{
			s.Ontology,
			strconv.Itoa(s.Terms),
			strconv.Itoa(s.SignificantBinom),
			strconv.Itoa(s.SignificantHyper),
			strconv.Itoa(s.SignificantBoth),
			orDash(s.TopTermID),
			orDash(s.TopTermName),
			top,
		}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

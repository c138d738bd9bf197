// Package output provides enrichment table and association writers.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/result"
)

// TabWriter writes enrichment records in tab-delimited format with the
// fixed result column order.
type TabWriter struct {
	w            *bufio.Writer
	columns      []string
	withOntology bool
}

// NewTabWriter creates a new tab-delimited writer. With withOntology set a
// leading ontology column is written, for tables flattened across
// ontologies.
func NewTabWriter(w io.Writer, withOntology bool) *TabWriter {
	columns := result.Columns
	if withOntology {
		columns = append([]string{"ontology"}, result.Columns...)
	}
	return &TabWriter{
		w:            bufio.NewWriter(w),
		columns:      columns,
		withOntology: withOntology,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(r result.FlatRecord) error {
	values := make([]string, 0, len(tw.columns))
	if tw.withOntology {
		values = append(values, r.Ontology)
	}
	values = append(values,
		r.TermID,
		r.TermName,
		strconv.Itoa(r.BinomRank),
		formatFloat(r.BinomP),
		formatFloat(r.BinomBonferroni),
		formatFloat(r.BinomFDR),
		formatFloat(r.BinomFoldEnrichment),
		strconv.Itoa(r.ObservedRegions),
		formatFloat(r.ExpectedRegions),
		formatFloat(r.GenomeFraction),
		formatFloat(r.HyperRank),
		formatFloat(r.HyperP),
		formatFloat(r.HyperBonferroni),
		formatFloat(r.HyperFDR),
		formatFloat(r.HyperFoldEnrichment),
		strconv.Itoa(r.ObservedGenes),
		formatFloat(r.ExpectedGenes),
		strconv.Itoa(r.TotalGenes),
	)

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every record.
func (tw *TabWriter) WriteAll(recs []result.FlatRecord) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range recs {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package result

import (
	"fmt"
	"sort"

	"github.com/jinzhu/copier"

	"github.com/inodb/gogreat/internal/ordered"
)

// Table is the ranked enrichment table of one ontology, sorted by
// ascending binomial p-value.
type Table struct {
	Ontology string
	Records  []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Filter returns a new table with ObservedGenes >= minGenes and
// BinomFDR <= maxFDR, order preserved.
func (t *Table) Filter(minGenes int, maxFDR float64) *Table {
	out := &Table{Ontology: t.Ontology, Records: make([]Record, 0, len(t.Records))}
	for _, r := range t.Records {
		if r.ObservedGenes >= minGenes && r.BinomFDR <= maxFDR {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Result is the output of one analysis: a table per ontology, the
// region-gene associations and run metadata.
type Result struct {
	Associations []Association
	Metadata     Metadata

	tables *ordered.Map[string, *Table]
}

// New creates an empty result.
func New(meta Metadata) *Result {
	return &Result{Metadata: meta, tables: ordered.NewMap[string, *Table](0)}
}

// AddTable adds or replaces the table of t.Ontology.
func (r *Result) AddTable(t *Table) {
	r.tables.Set(t.Ontology, t)
}

// Table returns the table of an ontology.
func (r *Result) Table(ontology string) (*Table, bool) {
	return r.tables.Get(ontology)
}

// Tables returns the tables in insertion order.
func (r *Result) Tables() []*Table {
	return r.tables.Values()
}

// Ontologies returns the ontology names in insertion order.
func (r *Result) Ontologies() []string {
	return r.tables.Keys()
}

// Filter returns filtered tables for the given ontologies, or for every
// ontology when none are given. A requested ontology missing from the
// result yields an empty table rather than an error.
func (r *Result) Filter(ontologies []string, minGenes int, maxFDR float64) []*Table {
	if len(ontologies) == 0 {
		ontologies = r.Ontologies()
	}
	out := make([]*Table, 0, len(ontologies))
	for _, name := range ontologies {
		t, ok := r.tables.Get(name)
		if !ok {
			out = append(out, &Table{Ontology: name})
			continue
		}
		out = append(out, t.Filter(minGenes, maxFDR))
	}
	return out
}

// Flat returns the records of one ontology, or of all ontologies in order
// when ontology is empty, each tagged with its ontology name.
func (r *Result) Flat(ontology string) ([]FlatRecord, error) {
	tables := r.Tables()
	if ontology != "" {
		t, ok := r.tables.Get(ontology)
		if !ok {
			return nil, nil
		}
		tables = []*Table{t}
	}

	var out []FlatRecord
	for _, t := range tables {
		var flat []FlatRecord
		if err := copier.Copy(&flat, &t.Records); err != nil {
			return nil, fmt.Errorf("flatten %s: %w", t.Ontology, err)
		}
		for i := range flat {
			flat[i].Ontology = t.Ontology
		}
		out = append(out, flat...)
	}
	return out, nil
}

// Sort keys accepted by Top.
const (
	SortBinomP    = "binom_p"
	SortHyperP    = "hyper_p"
	SortBinomFold = "binom_fold"
	SortHyperFold = "hyper_fold"
)

// Top returns up to n records of an ontology ordered by sortBy: p-values
// ascending, fold enrichments descending. Ties keep table order.
func (r *Result) Top(ontology string, n int, sortBy string) ([]Record, error) {
	t, ok := r.tables.Get(ontology)
	if !ok {
		return nil, nil
	}

	var less func(a, b Record) bool
	switch sortBy {
	case SortBinomP, "":
		less = func(a, b Record) bool { return a.BinomP < b.BinomP }
	case SortHyperP:
		less = func(a, b Record) bool { return a.HyperP < b.HyperP }
	case SortBinomFold:
		less = func(a, b Record) bool { return a.BinomFoldEnrichment > b.BinomFoldEnrichment }
	case SortHyperFold:
		less = func(a, b Record) bool { return a.HyperFoldEnrichment > b.HyperFoldEnrichment }
	default:
		return nil, fmt.Errorf("unknown sort key %q", sortBy)
	}

	recs := make([]Record, len(t.Records))
	copy(recs, t.Records)
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
	if n > 0 && n < len(recs) {
		recs = recs[:n]
	}
	return recs, nil
}

// TableSummary counts the terms of one ontology.
type TableSummary struct {
	Ontology         string
	Terms            int
	SignificantBinom int // BinomFDR <= 0.05
	SignificantHyper int // HyperFDR <= 0.05
	SignificantBoth  int
	TopTermID        string
	TopTermName      string
	TopTermBinomialP float64
}

// SignificanceLevel is the FDR threshold used by Summary.
const SignificanceLevel = 0.05

// Summary returns per-ontology term counts in table order.
func (r *Result) Summary() []TableSummary {
	out := make([]TableSummary, 0, r.tables.Len())
	for _, t := range r.Tables() {
		s := TableSummary{Ontology: t.Ontology, Terms: len(t.Records)}
		for _, rec := range t.Records {
			b := rec.BinomFDR <= SignificanceLevel
			h := rec.HyperFDR <= SignificanceLevel
			if b {
				s.SignificantBinom++
			}
			if h {
				s.SignificantHyper++
			}
			if b && h {
				s.SignificantBoth++
			}
		}
		if len(t.Records) > 0 {
			s.TopTermID = t.Records[0].TermID
			s.TopTermName = t.Records[0].TermName
			s.TopTermBinomialP = t.Records[0].BinomP
		}
		out = append(out, s)
	}
	return out
}

package associate

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/inodb/gogreat/internal/genes"
)

// domainInterval is a gene's regulatory domain stored in the tree.
type domainInterval struct {
	start, end int
	uid        uintptr
	gene       *genes.Gene
}

// Overlap uses half-open semantics.
func (d domainInterval) Overlap(b interval.IntRange) bool {
	return d.start < b.End && d.end > b.Start
}

func (d domainInterval) ID() uintptr {
	return d.uid
}

func (d domainInterval) Range() interval.IntRange {
	return interval.IntRange{Start: d.start, End: d.end}
}

// query is a half-open region searched against the tree.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.start < b.End && q.end > b.Start
}

// domainIndex holds one interval tree of regulatory domains per chromosome.
// Zero-width domains are kept aside and scanned linearly.
type domainIndex struct {
	trees  map[string]*interval.IntTree
	points map[string][]*genes.Gene
}

// buildIndex indexes every domain of a domain-computed store.
func buildIndex(s *genes.Store) (*domainIndex, error) {
	idx := &domainIndex{
		trees:  make(map[string]*interval.IntTree),
		points: make(map[string][]*genes.Gene),
	}
	var uid uintptr

	for _, chrom := range s.Chromosomes() {
		tree := &interval.IntTree{}
		for _, g := range s.GenesByChrom(chrom) {
			if g.DomainLen() <= 0 {
				idx.points[chrom] = append(idx.points[chrom], g)
				continue
			}
			uid++
			d := domainInterval{start: g.RegStart, end: g.RegEnd, uid: uid, gene: g}
			if err := tree.Insert(d, true); err != nil {
				return nil, fmt.Errorf("index domain of %s: %w", g.ID, err)
			}
		}
		if tree.Len() > 0 {
			tree.AdjustRanges()
		}
		idx.trees[chrom] = tree
	}
	return idx, nil
}

// overlapping returns the genes whose domains overlap [start, end) on chrom.
func (idx *domainIndex) overlapping(chrom string, start, end int) []*genes.Gene {
	var out []*genes.Gene
	if tree, ok := idx.trees[chrom]; ok && tree.Len() > 0 {
		for _, h := range tree.Get(query{start: start, end: end}) {
			out = append(out, h.(domainInterval).gene)
		}
	}
	for _, g := range idx.points[chrom] {
		if g.Overlaps(start, end) {
			out = append(out, g)
		}
	}
	return out
}

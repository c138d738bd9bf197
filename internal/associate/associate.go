// Package associate maps genomic regions to the genes whose regulatory
// domains they overlap.
package associate

import (
	"fmt"
	"sort"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/ordered"
	"github.com/inodb/gogreat/internal/regions"
)

// Hit is one region and the IDs of the genes it is associated with.
type Hit struct {
	Region regions.Region
	Genes  map[string]struct{}
}

// GeneIDs returns the hit gene IDs in lexical order.
func (h *Hit) GeneIDs() []string {
	ids := make([]string, 0, len(h.Genes))
	for id := range h.Genes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Intersects reports whether any hit gene is in set.
func (h *Hit) Intersects(set map[string]struct{}) bool {
	small, large := h.Genes, set
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return true
		}
	}
	return false
}

// Associations maps region keys to hits in region input order.
type Associations struct {
	hits     *ordered.Map[string, *Hit]
	nRegions int
}

// Pair is one region-gene association row.
type Pair struct {
	RegionKey string
	GeneID    string
}

// Associate finds, for every region, the genes whose regulatory domains
// overlap it. Regions sharing a key are merged into one entry. The store
// must have computed domains.
func Associate(rs regions.Set, s *genes.Store) (*Associations, error) {
	if err := s.RequireDomains(); err != nil {
		return nil, err
	}
	idx, err := buildIndex(s)
	if err != nil {
		return nil, err
	}

	a := &Associations{hits: ordered.NewMap[string, *Hit](len(rs)), nRegions: len(rs)}
	for _, r := range rs {
		key := r.Key()
		h, ok := a.hits.Get(key)
		if !ok {
			h = &Hit{Region: r, Genes: make(map[string]struct{})}
			a.hits.Add(key, h)
		}
		for _, g := range idx.overlapping(r.Chrom, r.Start, r.End) {
			h.Genes[g.ID] = struct{}{}
		}
	}
	return a, nil
}

// NumRegions returns the number of input regions, duplicates included.
func (a *Associations) NumRegions() int {
	return a.nRegions
}

// Len returns the number of distinct region keys.
func (a *Associations) Len() int {
	return a.hits.Len()
}

// Keys returns the region keys in input order.
func (a *Associations) Keys() []string {
	return a.hits.Keys()
}

// Hits returns the hits in input order. The slice must not be modified.
func (a *Associations) Hits() []*Hit {
	return a.hits.Values()
}

// Get returns the hit for a region key.
func (a *Associations) Get(key string) (*Hit, bool) {
	return a.hits.Get(key)
}

// HitGenes returns the set of genes hit by any region.
func (a *Associations) HitGenes() map[string]struct{} {
	all := make(map[string]struct{})
	for _, h := range a.hits.Values() {
		for id := range h.Genes {
			all[id] = struct{}{}
		}
	}
	return all
}

// CountRegions returns the number of region keys hitting at least one gene
// of set.
func (a *Associations) CountRegions(set map[string]struct{}) int {
	n := 0
	for _, h := range a.hits.Values() {
		if h.Intersects(set) {
			n++
		}
	}
	return n
}

// RegionsByGene maps each hit gene to the positions, in Hits order, of
// the region keys hitting it.
func (a *Associations) RegionsByGene() map[string][]int {
	out := make(map[string][]int)
	for i, h := range a.hits.Values() {
		for id := range h.Genes {
			out[id] = append(out[id], i)
		}
	}
	return out
}

// Pairs returns one row per region-gene association, regions in input
// order and genes sorted within a region.
func (a *Associations) Pairs() []Pair {
	var out []Pair
	for _, h := range a.hits.Values() {
		key := h.Region.Key()
		for _, id := range h.GeneIDs() {
			out = append(out, Pair{RegionKey: key, GeneID: id})
		}
	}
	return out
}

// String summarises the association counts.
func (a *Associations) String() string {
	return fmt.Sprintf("%d regions (%d distinct) hitting %d genes", a.nRegions, a.hits.Len(), len(a.HitGenes()))
}

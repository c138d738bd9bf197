// Package genesets loads gene-set collections (GMT, GO annotations) used as
// the term catalogue for enrichment testing.
package genesets

import (
	"sort"

	"github.com/inodb/gogreat/internal/ordered"
)

// GeneSet is one term of a collection and the genes annotated to it.
type GeneSet struct {
	ID          string
	Name        string
	Description string
	Ontology    string
	Genes       map[string]struct{}
}

// NewGeneSet creates a gene set holding genes.
func NewGeneSet(id, name string, genes ...string) *GeneSet {
	gs := &GeneSet{ID: id, Name: name, Genes: make(map[string]struct{}, len(genes))}
	for _, g := range genes {
		gs.Genes[g] = struct{}{}
	}
	return gs
}

// Len returns the number of genes in the set.
func (gs *GeneSet) Len() int {
	return len(gs.Genes)
}

// Contains reports whether gene belongs to the set.
func (gs *GeneSet) Contains(gene string) bool {
	_, ok := gs.Genes[gene]
	return ok
}

// Add inserts a gene.
func (gs *GeneSet) Add(gene string) {
	if gs.Genes == nil {
		gs.Genes = make(map[string]struct{})
	}
	gs.Genes[gene] = struct{}{}
}

// SortedGenes returns the genes in lexical order.
func (gs *GeneSet) SortedGenes() []string {
	out := make([]string, 0, len(gs.Genes))
	for g := range gs.Genes {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Collection is a named, ordered catalogue of gene sets, typically one
// ontology.
type Collection struct {
	Name        string
	Description string

	sets *ordered.Map[string, *GeneSet]
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{Name: name, sets: ordered.NewMap[string, *GeneSet](0)}
}

// Set adds gs, replacing any set with the same ID in place. The set's
// Ontology is set to the collection name when empty.
func (c *Collection) Set(gs *GeneSet) {
	if gs.Ontology == "" {
		gs.Ontology = c.Name
	}
	c.sets.Set(gs.ID, gs)
}

// Get returns the gene set with the given term ID.
func (c *Collection) Get(id string) (*GeneSet, bool) {
	return c.sets.Get(id)
}

// Has reports whether the collection holds the term.
func (c *Collection) Has(id string) bool {
	return c.sets.Has(id)
}

// Len returns the number of gene sets.
func (c *Collection) Len() int {
	return c.sets.Len()
}

// Sets returns the gene sets in insertion order. The slice must not be
// modified.
func (c *Collection) Sets() []*GeneSet {
	return c.sets.Values()
}

// IDs returns the term IDs in insertion order.
func (c *Collection) IDs() []string {
	return c.sets.Keys()
}

// FilterBySize returns a new collection holding the sets with
// minSize <= size <= maxSize. The receiver is not modified.
func (c *Collection) FilterBySize(minSize, maxSize int) *Collection {
	return &Collection{
		Name:        c.Name,
		Description: c.Description,
		sets: c.sets.Filter(func(_ string, gs *GeneSet) bool {
			return gs.Len() >= minSize && gs.Len() <= maxSize
		}),
	}
}

// AllGenes returns the union of genes over all sets.
func (c *Collection) AllGenes() map[string]struct{} {
	all := make(map[string]struct{})
	for _, gs := range c.sets.Values() {
		for g := range gs.Genes {
			all[g] = struct{}{}
		}
	}
	return all
}

// FromMap builds a collection from term ID to genes. Terms are added in
// lexical ID order and named by their ID.
func FromMap(name string, m map[string][]string) *Collection {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c := NewCollection(name)
	for _, id := range ids {
		c.Set(NewGeneSet(id, id, m[id]...))
	}
	return c
}

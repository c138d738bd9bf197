package enrich

import (
	"sort"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/genesets"
)

// Warning reports the members of a term that matched no annotated gene and
// were dropped, and those that resolved to a gene ID while also being the
// symbol of another gene.
type Warning struct {
	Collection string
	TermID     string
	Dropped    []string
	Ambiguous  []string
}

// TranslateIdentifiers returns a copy of c whose gene sets hold gene IDs of
// s. Symbols are mapped through the store's name index, gene IDs are kept
// and anything else is dropped and reported. Terms keep their order.
func TranslateIdentifiers(c *genesets.Collection, s *genes.Store) (*genesets.Collection, []Warning) {
	return translate(c, s.NameIndex(), s.SymbolCollisions())
}

func translate(c *genesets.Collection, nameIndex, collisions map[string]string) (*genesets.Collection, []Warning) {
	out := genesets.NewCollection(c.Name)
	out.Description = c.Description

	var warnings []Warning
	for _, gs := range c.Sets() {
		t := &genesets.GeneSet{
			ID:          gs.ID,
			Name:        gs.Name,
			Description: gs.Description,
			Ontology:    gs.Ontology,
			Genes:       make(map[string]struct{}, len(gs.Genes)),
		}

		var dropped, ambiguous []string
		for g := range gs.Genes {
			id, ok := nameIndex[g]
			if !ok {
				dropped = append(dropped, g)
				continue
			}
			t.Genes[id] = struct{}{}
			if _, ok := collisions[g]; ok {
				ambiguous = append(ambiguous, g)
			}
		}
		if len(dropped) > 0 || len(ambiguous) > 0 {
			sort.Strings(dropped)
			sort.Strings(ambiguous)
			warnings = append(warnings, Warning{
				Collection: c.Name,
				TermID:     gs.ID,
				Dropped:    dropped,
				Ambiguous:  ambiguous,
			})
		}
		out.Set(t)
	}
	return out, warnings
}

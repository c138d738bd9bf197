package genesets

import "strings"

var msigdbCategories = map[string]string{
	"HALLMARK": "Hallmark",
	"KEGG":     "KEGG Pathway",
	"REACTOME": "Reactome Pathway",
	"BIOCARTA": "BioCarta Pathway",
	"PID":      "PID Pathway",
	"GO":       "Gene Ontology",
	"HP":       "Human Phenotype",
	"WP":       "WikiPathways",
}

// Category returns the MSigDB category for a set ID such as
// "HALLMARK_APOPTOSIS". IDs without an underscore fall in "OTHER";
// unknown prefixes name their own category.
func Category(id string) string {
	prefix, _, ok := strings.Cut(id, "_")
	if !ok {
		return "OTHER"
	}
	if name, ok := msigdbCategories[prefix]; ok {
		return name
	}
	return prefix
}

// SplitByPrefix partitions an MSigDB collection by category. Collections
// are returned in order of first appearance.
func SplitByPrefix(c *Collection) []*Collection {
	var out []*Collection
	byName := make(map[string]*Collection)
	for _, gs := range c.Sets() {
		name := Category(gs.ID)
		sub, ok := byName[name]
		if !ok {
			sub = NewCollection(name)
			byName[name] = sub
			out = append(out, sub)
		}
		cp := *gs
		cp.Ontology = name
		sub.Set(&cp)
	}
	return out
}

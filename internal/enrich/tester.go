package enrich

import (
	"context"
	"fmt"
	"sort"

	"github.com/inodb/gogreat/internal/associate"
	"github.com/inodb/gogreat/internal/genesets"
	"github.com/inodb/gogreat/internal/result"
	"github.com/inodb/gogreat/internal/stats"
)

// Tester scores the terms of a collection against one set of region-gene
// associations. It is read-only after construction and safe for
// concurrent use.
type Tester struct {
	nRegions   int
	nHits      int // distinct region keys
	hitGenes   map[string]struct{}
	byGene     map[string][]int
	totalGenes int
}

// NewTester prepares the association counts shared by every collection.
// totalGenes is the number of annotated genes.
func NewTester(a *associate.Associations, totalGenes int) (*Tester, error) {
	if a.NumRegions() == 0 {
		return nil, fmt.Errorf("no regions to test")
	}
	if totalGenes <= 0 {
		return nil, fmt.Errorf("no annotated genes to test against")
	}
	return &Tester{
		nRegions:   a.NumRegions(),
		nHits:      a.Len(),
		hitGenes:   a.HitGenes(),
		byGene:     a.RegionsByGene(),
		totalGenes: totalGenes,
	}, nil
}

// HitGenes returns the number of genes hit by any region.
func (t *Tester) HitGenes() int {
	return len(t.hitGenes)
}

// Test scores every term of c, using fractions[termID] as the term's share
// of the regulatory genome. Terms hit by no region and no gene are left
// out. The returned table is sorted by ascending binomial p-value.
func (t *Tester) Test(ctx context.Context, c *genesets.Collection, fractions map[string]float64) (*result.Table, error) {
	table := &result.Table{Ontology: c.Name}
	marks := make([]int, t.nHits)
	stamp := 0

	for _, gs := range c.Sets() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// regions hitting any term gene, each counted once
		stamp++
		observedRegions := 0
		genesInTermHit := 0
		for g := range gs.Genes {
			if _, ok := t.hitGenes[g]; ok {
				genesInTermHit++
			}
			for _, ri := range t.byGene[g] {
				if marks[ri] != stamp {
					marks[ri] = stamp
					observedRegions++
				}
			}
		}
		if observedRegions == 0 && genesInTermHit == 0 {
			continue
		}

		fraction := fractions[gs.ID]
		binomP, binomFold := stats.BinomialTest(observedRegions, t.nRegions, fraction)
		hyperP, hyperFold := stats.HypergeometricTest(genesInTermHit, len(t.hitGenes), gs.Len(), t.totalGenes)

		table.Records = append(table.Records, result.Record{
			TermID:              gs.ID,
			TermName:            gs.Name,
			BinomP:              binomP,
			BinomFoldEnrichment: binomFold,
			ObservedRegions:     observedRegions,
			ExpectedRegions:     float64(t.nRegions) * fraction,
			GenomeFraction:      fraction,
			HyperP:              hyperP,
			HyperFoldEnrichment: hyperFold,
			ObservedGenes:       genesInTermHit,
			ExpectedGenes:       float64(len(t.hitGenes)) * float64(gs.Len()) / float64(t.totalGenes),
			TotalGenes:          gs.Len(),
		})
	}

	correct(table.Records)
	return table, nil
}

// correct fills in the batch-relative corrections and ranks, then sorts
// records by ascending binomial p-value.
func correct(recs []result.Record) {
	if len(recs) == 0 {
		return
	}

	binomP := make([]float64, len(recs))
	hyperP := make([]float64, len(recs))
	for i, r := range recs {
		binomP[i] = r.BinomP
		hyperP[i] = r.HyperP
	}

	binomFDR := stats.BenjaminiHochberg(binomP)
	hyperFDR := stats.BenjaminiHochberg(hyperP)
	binomBonf := stats.Bonferroni(binomP)
	hyperBonf := stats.Bonferroni(hyperP)
	hyperRank := stats.Rank(hyperP)

	for i := range recs {
		recs[i].BinomFDR = binomFDR[i]
		recs[i].HyperFDR = hyperFDR[i]
		recs[i].BinomBonferroni = binomBonf[i]
		recs[i].HyperBonferroni = hyperBonf[i]
		recs[i].HyperRank = hyperRank[i]
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].BinomP < recs[j].BinomP
	})
	for i := range recs {
		recs[i].BinomRank = i + 1
	}
}

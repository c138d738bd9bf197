package genes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func twoGeneStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Add(&Gene{ID: "g1", Name: "GENE1", Chrom: "chr1", TSS: 10_000, Strand: 1})
	s.Add(&Gene{ID: "g2", Name: "GENE2", Chrom: "chr1", TSS: 50_000, Strand: -1})
	s.SetChromSizes(map[string]int{"chr1": 1_000_000})
	return s
}

func domain(t *testing.T, s *Store, id string) [2]int {
	t.Helper()
	g, ok := s.Get(id)
	require.True(t, ok, "gene %s", id)
	return [2]int{g.RegStart, g.RegEnd}
}

func TestComputeDomains_BasalPlusExt(t *testing.T) {
	s := twoGeneStore(t)
	require.NoError(t, s.ComputeDomains(DefaultDomainParams()))

	assert.Equal(t, [2]int{0, 49_000}, domain(t, s, "g1"))
	assert.Equal(t, [2]int{11_000, 1_000_000}, domain(t, s, "g2"))
	assert.Equal(t, StateDomainsComputed, s.State())
	assert.Equal(t, DefaultDomainParams(), s.Params())
}

func TestComputeDomains_BasalPlusExtShortExtension(t *testing.T) {
	s := twoGeneStore(t)
	p := DefaultDomainParams()
	p.MaxExtension = 2_000
	require.NoError(t, s.ComputeDomains(p))

	// the basal domain is never cut by a shorter extension
	assert.Equal(t, [2]int{5_000, 12_000}, domain(t, s, "g1"))
	assert.Equal(t, [2]int{48_000, 55_000}, domain(t, s, "g2"))
}

func TestComputeDomains_TwoClosest(t *testing.T) {
	s := twoGeneStore(t)
	s.Add(&Gene{ID: "g3", Chrom: "chr1", TSS: 60_001, Strand: 1})

	p := DefaultDomainParams()
	p.Rule = TwoClosest
	require.NoError(t, s.ComputeDomains(p))

	assert.Equal(t, [2]int{0, 30_000}, domain(t, s, "g1"))
	assert.Equal(t, [2]int{30_000, 55_000}, domain(t, s, "g2"))
	assert.Equal(t, [2]int{55_000, 1_000_000}, domain(t, s, "g3"))
}

func TestComputeDomains_OneClosestMaxExtension(t *testing.T) {
	s := twoGeneStore(t)
	p := DomainParams{Rule: OneClosest, MaxExtension: 5_000}
	require.NoError(t, s.ComputeDomains(p))

	assert.Equal(t, [2]int{5_000, 15_000}, domain(t, s, "g1"))
	assert.Equal(t, [2]int{45_000, 55_000}, domain(t, s, "g2"))
}

func TestComputeDomains_UnknownRule(t *testing.T) {
	s := twoGeneStore(t)
	err := s.ComputeDomains(DomainParams{Rule: "nearest"})
	assert.ErrorIs(t, err, ErrUnknownRule)
	assert.Equal(t, StatePositions, s.State())
}

func TestComputeDomains_NegativeDistance(t *testing.T) {
	s := twoGeneStore(t)
	p := DefaultDomainParams()
	p.Upstream = -1
	assert.Error(t, s.ComputeDomains(p))
}

func TestComputeDomains_Idempotent(t *testing.T) {
	s := randomStore(t, 7, 200)
	for _, rule := range Rules {
		p := DefaultDomainParams()
		p.Rule = rule

		require.NoError(t, s.ComputeDomains(p))
		first := make(map[string][2]int, s.Len())
		for _, g := range s.Genes() {
			first[g.ID] = [2]int{g.RegStart, g.RegEnd}
		}

		require.NoError(t, s.ComputeDomains(p))
		for _, g := range s.Genes() {
			assert.Equal(t, first[g.ID], [2]int{g.RegStart, g.RegEnd}, "%s gene %s", rule, g.ID)
		}
	}
}

func TestComputeDomains_Bounds(t *testing.T) {
	for seed := uint32(1); seed <= 20; seed++ {
		s := randomStore(t, seed, 100)
		for _, rule := range Rules {
			p := DefaultDomainParams()
			p.Rule = rule
			p.MaxExtension = int(seed) * 7_919
			require.NoError(t, s.ComputeDomains(p))

			for _, g := range s.Genes() {
				size := s.ChromSize(g.Chrom)
				require.LessOrEqual(t, 0, g.RegStart, "%s %s", rule, g.ID)
				require.LessOrEqual(t, g.RegStart, g.RegEnd, "%s %s", rule, g.ID)
				require.LessOrEqual(t, g.RegEnd, size, "%s %s", rule, g.ID)
				require.LessOrEqual(t, g.RegStart, g.TSS, "%s %s", rule, g.ID)
				require.LessOrEqual(t, g.TSS, g.RegEnd, "%s %s", rule, g.ID)
			}
		}
	}
}

func TestComputeDomains_BasalPlusExtNoCrossing(t *testing.T) {
	s := randomStore(t, 11, 150)
	p := DefaultDomainParams()
	require.NoError(t, s.ComputeDomains(p))

	// an extended domain never reaches into another gene's basal domain
	// beyond its own basal domain
	for _, chrom := range s.Chromosomes() {
		genes := s.GenesByChrom(chrom)
		for i, g := range genes {
			bs, be := basal(g, p.Upstream, p.Downstream)
			for j, o := range genes {
				if i == j {
					continue
				}
				obs, obe := basal(o, p.Upstream, p.Downstream)
				if o.TSS < g.TSS && g.RegStart < bs {
					assert.GreaterOrEqual(t, g.RegStart, obe, "%s extends over %s", g.ID, o.ID)
				}
				if o.TSS > g.TSS && g.RegEnd > be {
					assert.LessOrEqual(t, g.RegEnd, obs, "%s extends over %s", g.ID, o.ID)
				}
			}
		}
	}
}

func TestComputeDomains_GeneBeyondChromSize(t *testing.T) {
	s := NewStore()
	s.Add(&Gene{ID: "g", Chrom: "chrM", TSS: 20_000, Strand: 1})
	s.SetChromSizes(map[string]int{"chrM": 16_569})
	require.NoError(t, s.ComputeDomains(DefaultDomainParams()))

	g, _ := s.Get("g")
	assert.Equal(t, 0, g.RegStart)
	assert.Equal(t, 16_569, g.RegEnd, "domain is clamped to the chromosome end")
}

func TestParseRule(t *testing.T) {
	for _, r := range Rules {
		got, err := ParseRule(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRule("basal")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

// randomStore places n genes at distinct random TSSs on two chromosomes.
func randomStore(t *testing.T, seed uint32, n int) *Store {
	t.Helper()
	var rng fastrand.RNG
	rng.Seed(seed)

	sizes := map[string]int{"chr1": 2_000_000, "chr2": 500_000}
	s := NewStore()
	s.SetChromSizes(sizes)
	for i := 0; i < n; i++ {
		chrom := "chr1"
		if i%3 == 0 {
			chrom = "chr2"
		}
		strand := int8(1)
		if rng.Uint32()%2 == 0 {
			strand = -1
		}
		s.Add(&Gene{
			ID:     fmt.Sprintf("gene%d", i),
			Chrom:  chrom,
			TSS:    int(rng.Uint32n(uint32(sizes[chrom]))),
			Strand: strand,
		})
	}
	return s
}

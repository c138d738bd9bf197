package genes

import (
	"errors"
	"fmt"
	"sort"

	"github.com/inodb/gogreat/internal/ordered"
)

// DefaultChromSize bounds domain extension on chromosomes without a known size.
const DefaultChromSize = 300_000_000

var (
	// ErrInvalidAnnotation reports a gene model that yielded no genes.
	ErrInvalidAnnotation = errors.New("invalid annotation")
	// ErrDomainsNotComputed reports use of a store before ComputeDomains.
	ErrDomainsNotComputed = errors.New("regulatory domains not computed")
)

// State is the lifecycle phase of a Store.
type State int

const (
	// StatePositions holds TSS positions only; RegStart/RegEnd are unset.
	StatePositions State = iota
	// StateDomainsComputed holds regulatory domains for every gene. The store
	// is read-only in this state and safe for concurrent readers.
	StateDomainsComputed
)

func (s State) String() string {
	switch s {
	case StatePositions:
		return "positions"
	case StateDomainsComputed:
		return "domains-computed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Store owns the genes of one annotation, keyed by gene ID in load order,
// and the chromosome sizes used to clamp domains.
type Store struct {
	Organism string

	genes      *ordered.Map[string, *Gene]
	chromSizes map[string]int
	byChrom    map[string][]*Gene // sorted by TSS; rebuilt on demand
	state      State
	params     DomainParams
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		genes:      ordered.NewMap[string, *Gene](0),
		chromSizes: make(map[string]int),
	}
}

// Add inserts a gene. Genes with an ID already present are dropped and Add
// returns false. Adding a gene returns the store to StatePositions.
func (s *Store) Add(g *Gene) bool {
	if !s.genes.Add(g.ID, g) {
		return false
	}
	s.byChrom = nil
	s.state = StatePositions
	return true
}

// SetChromSizes replaces the chromosome size table.
func (s *Store) SetChromSizes(sizes map[string]int) {
	s.chromSizes = make(map[string]int, len(sizes))
	for chrom, size := range sizes {
		s.chromSizes[chrom] = size
	}
	s.state = StatePositions
}

// ChromSizes returns a copy of the chromosome size table.
func (s *Store) ChromSizes() map[string]int {
	sizes := make(map[string]int, len(s.chromSizes))
	for chrom, size := range s.chromSizes {
		sizes[chrom] = size
	}
	return sizes
}

// ChromSize returns the size of chrom, or DefaultChromSize if unknown.
func (s *Store) ChromSize(chrom string) int {
	if size, ok := s.chromSizes[chrom]; ok {
		return size
	}
	return DefaultChromSize
}

// Get returns the gene with the given ID.
func (s *Store) Get(id string) (*Gene, bool) {
	return s.genes.Get(id)
}

// Has reports whether a gene with the given ID exists.
func (s *Store) Has(id string) bool {
	return s.genes.Has(id)
}

// Len returns the number of genes.
func (s *Store) Len() int {
	return s.genes.Len()
}

// Genes returns all genes in load order.
func (s *Store) Genes() []*Gene {
	return s.genes.Values()
}

// Chromosomes returns a sorted list of chromosomes carrying genes.
func (s *Store) Chromosomes() []string {
	s.index()
	chroms := make([]string, 0, len(s.byChrom))
	for chrom := range s.byChrom {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// GenesByChrom returns the genes on chrom sorted by ascending TSS. Genes
// sharing a TSS keep their load order. The slice must not be modified.
func (s *Store) GenesByChrom(chrom string) []*Gene {
	s.index()
	return s.byChrom[chrom]
}

func (s *Store) index() {
	if s.byChrom != nil {
		return
	}
	s.byChrom = make(map[string][]*Gene)
	for _, g := range s.genes.Values() {
		s.byChrom[g.Chrom] = append(s.byChrom[g.Chrom], g)
	}
	for _, genes := range s.byChrom {
		sort.SliceStable(genes, func(i, j int) bool {
			return genes[i].TSS < genes[j].TSS
		})
	}
}

// State returns the lifecycle phase of the store.
func (s *Store) State() State {
	return s.state
}

// Params returns the parameters of the last domain computation.
func (s *Store) Params() DomainParams {
	return s.params
}

// RequireDomains returns ErrDomainsNotComputed unless the store holds
// regulatory domains.
func (s *Store) RequireDomains() error {
	if s.state != StateDomainsComputed {
		return fmt.Errorf("%w: store is in %s state", ErrDomainsNotComputed, s.state)
	}
	return nil
}

// NameIndex maps gene symbols and gene IDs to gene IDs. When several genes
// share a symbol the last one loaded wins; IDs always map to themselves.
func (s *Store) NameIndex() map[string]string {
	idx := make(map[string]string, 2*s.genes.Len())
	for _, g := range s.genes.Values() {
		idx[g.Name] = g.ID
	}
	for _, g := range s.genes.Values() {
		idx[g.ID] = g.ID
	}
	return idx
}

// SymbolCollisions returns the symbols that are also the ID of a different
// gene, mapped to the ID of the gene carrying the symbol. NameIndex resolves
// such identifiers to the gene with that ID.
func (s *Store) SymbolCollisions() map[string]string {
	out := make(map[string]string)
	for _, g := range s.genes.Values() {
		if g.Name == g.ID {
			continue
		}
		if s.genes.Has(g.Name) {
			out[g.Name] = g.ID
		}
	}
	return out
}

// TotalDomainSize returns the summed width of all regulatory domains, at
// least 1 so it can serve as a denominator.
func (s *Store) TotalDomainSize() int {
	total := 0
	for _, g := range s.genes.Values() {
		total += g.DomainLen()
	}
	return max(total, 1)
}

// validate reports ErrInvalidAnnotation for an empty store.
func (s *Store) validate(source string) error {
	if s.genes.Len() == 0 {
		return fmt.Errorf("%w: no genes parsed from %s", ErrInvalidAnnotation, source)
	}
	return nil
}

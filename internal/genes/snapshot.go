package genes

// Snapshot is the serialisable form of a Store.
type Snapshot struct {
	Organism   string
	Genes      []Gene
	ChromSizes map[string]int
	State      State
	Params     DomainParams
}

// Snapshot captures the genes, in load order, and the store's state.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Organism:   s.Organism,
		Genes:      make([]Gene, 0, s.Len()),
		ChromSizes: s.ChromSizes(),
		State:      s.state,
		Params:     s.params,
	}
	for _, g := range s.genes.Values() {
		snap.Genes = append(snap.Genes, *g)
	}
	return snap
}

// FromSnapshot rebuilds a store, including computed domains.
func FromSnapshot(snap Snapshot) *Store {
	s := NewStore()
	s.Organism = snap.Organism
	s.SetChromSizes(snap.ChromSizes)
	for i := range snap.Genes {
		g := snap.Genes[i]
		s.Add(&g)
	}
	s.state = snap.State
	s.params = snap.Params
	s.index()
	return s
}

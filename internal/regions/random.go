package regions

import (
	"fmt"
	"sort"

	"github.com/valyala/fastrand"
)

// Random draws n regions of the given width uniformly over the genome
// described by chromSizes. Chromosomes are chosen proportionally to their
// usable length. The same seed always yields the same set.
func Random(n, width int, chromSizes map[string]int, seed uint32) (Set, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: region count must be positive, got %d", ErrInvalidRegions, n)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: region width must be positive, got %d", ErrInvalidRegions, width)
	}

	chroms := make([]string, 0, len(chromSizes))
	for chrom, size := range chromSizes {
		if size >= width {
			chroms = append(chroms, chrom)
		}
	}
	if len(chroms) == 0 {
		return nil, fmt.Errorf("%w: no chromosome is at least %d bp long", ErrInvalidRegions, width)
	}
	sort.Strings(chroms)

	// cumulative[i] is the number of valid start positions on chroms[:i+1]
	cumulative := make([]uint64, len(chroms))
	var total uint64
	for i, chrom := range chroms {
		total += uint64(chromSizes[chrom] - width + 1)
		cumulative[i] = total
	}

	var rng fastrand.RNG
	rng.Seed(seed)

	set := make(Set, 0, n)
	for i := 0; i < n; i++ {
		x := (uint64(rng.Uint32())<<32 | uint64(rng.Uint32())) % total
		idx := sort.Search(len(cumulative), func(j int) bool { return cumulative[j] > x })
		offset := x
		if idx > 0 {
			offset -= cumulative[idx-1]
		}
		start := int(offset)
		set = append(set, Region{
			Chrom: chroms[idx],
			Start: start,
			End:   start + width,
			Name:  fmt.Sprintf("random_%d", i+1),
		})
	}
	return set, nil
}

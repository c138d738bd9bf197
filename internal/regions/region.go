// Package regions provides genomic interval sets read from BED files.
package regions

import (
	"errors"
	"fmt"
	"strconv"
)

// DefaultMaxRegions is the largest region set accepted unless overridden.
const DefaultMaxRegions = 500_000

// ErrInvalidRegions reports an empty, oversized or malformed region set.
var ErrInvalidRegions = errors.New("invalid regions")

// Region is a half-open genomic interval [Start, End).
type Region struct {
	Chrom  string
	Start  int      // 0-based, inclusive
	End    int      // exclusive
	Name   string   // empty if absent
	Score  *float64 // nil if absent
	Strand string   // "+", "-" or empty
}

// Key returns the bookkeeping identifier chrom:start-end, suffixed with :name
// when the region is named.
func (r Region) Key() string {
	key := r.Chrom + ":" + strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
	if r.Name != "" {
		key += ":" + r.Name
	}
	return key
}

// Len returns the width of the region in base pairs.
func (r Region) Len() int {
	return r.End - r.Start
}

// Set is an ordered collection of regions.
type Set []Region

// Validate checks that the set is non-empty, no larger than maxRegions and
// that every region has non-negative, strictly increasing coordinates.
// A maxRegions of zero or less selects DefaultMaxRegions.
func (s Set) Validate(maxRegions int) error {
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}
	if len(s) == 0 {
		return fmt.Errorf("%w: no regions provided", ErrInvalidRegions)
	}
	if len(s) > maxRegions {
		return fmt.Errorf("%w: too many regions: %d > %d", ErrInvalidRegions, len(s), maxRegions)
	}
	for i, r := range s {
		if r.Start < 0 {
			return fmt.Errorf("%w: region %d: negative start coordinate %d", ErrInvalidRegions, i, r.Start)
		}
		if r.End <= r.Start {
			return fmt.Errorf("%w: region %d: end (%d) must be > start (%d)", ErrInvalidRegions, i, r.End, r.Start)
		}
	}
	return nil
}

// Chromosomes returns the distinct chromosome names in first-seen order.
func (s Set) Chromosomes() []string {
	seen := make(map[string]bool)
	var chroms []string
	for _, r := range s {
		if !seen[r.Chrom] {
			seen[r.Chrom] = true
			chroms = append(chroms, r.Chrom)
		}
	}
	return chroms
}

// TotalLen returns the summed width of all regions.
func (s Set) TotalLen() int {
	total := 0
	for _, r := range s {
		total += r.Len()
	}
	return total
}

package genes

import (
	"errors"
	"fmt"
)

// ErrUnknownRule reports an association rule name that is not recognised.
var ErrUnknownRule = errors.New("unknown association rule")

// Rule selects how far a regulatory domain extends from its TSS.
type Rule string

// Association rules.
const (
	BasalPlusExt Rule = "basalPlusExt"
	TwoClosest   Rule = "twoClosest"
	OneClosest   Rule = "oneClosest"
)

// Default rule parameters in base pairs.
const (
	DefaultUpstream     = 5_000
	DefaultDownstream   = 1_000
	DefaultMaxExtension = 1_000_000
)

// Rules lists the recognised association rules.
var Rules = []Rule{BasalPlusExt, TwoClosest, OneClosest}

// ParseRule converts a rule name to a Rule.
func ParseRule(name string) (Rule, error) {
	for _, r := range Rules {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownRule, name, Rules)
}

// DomainParams configures the regulatory domain computation.
type DomainParams struct {
	Rule         Rule
	Upstream     int // basal upstream extent (basalPlusExt only)
	Downstream   int // basal downstream extent (basalPlusExt only)
	MaxExtension int // maximum extension from the TSS in either direction
}

// DefaultDomainParams returns the GREAT defaults: basalPlusExt with a
// 5 kb upstream, 1 kb downstream basal domain and 1 Mb extension.
func DefaultDomainParams() DomainParams {
	return DomainParams{
		Rule:         BasalPlusExt,
		Upstream:     DefaultUpstream,
		Downstream:   DefaultDownstream,
		MaxExtension: DefaultMaxExtension,
	}
}

func (p DomainParams) validate() error {
	if _, err := ParseRule(string(p.Rule)); err != nil {
		return err
	}
	if p.Upstream < 0 || p.Downstream < 0 || p.MaxExtension < 0 {
		return fmt.Errorf("domain distances must be non-negative: upstream=%d downstream=%d max_extension=%d",
			p.Upstream, p.Downstream, p.MaxExtension)
	}
	return nil
}

// ComputeDomains sets RegStart/RegEnd for every gene and moves the store to
// StateDomainsComputed. Each chromosome is processed independently from its
// TSS-ordered gene list. The result depends only on gene order and params,
// so repeated calls yield identical domains.
func (s *Store) ComputeDomains(p DomainParams) error {
	if err := p.validate(); err != nil {
		return err
	}

	for _, chrom := range s.Chromosomes() {
		genes := s.GenesByChrom(chrom)
		chromSize := s.ChromSize(chrom)

		switch p.Rule {
		case BasalPlusExt:
			computeBasalPlusExt(genes, chromSize, p.Upstream, p.Downstream, p.MaxExtension)
		case TwoClosest:
			computeTwoClosest(genes, chromSize, p.MaxExtension)
		case OneClosest:
			computeOneClosest(genes, chromSize, p.MaxExtension)
		}
	}

	s.params = p
	s.state = StateDomainsComputed
	return nil
}

// basal returns the basal domain [start, end] of g, which may run past the
// chromosome bounds before clamping.
func basal(g *Gene, upstream, downstream int) (int, int) {
	if g.IsReverseStrand() {
		return g.TSS - downstream, g.TSS + upstream
	}
	return g.TSS - upstream, g.TSS + downstream
}

// computeBasalPlusExt gives every gene its basal domain, then extends it up
// to maxExt from the TSS on each side, stopping at the basal domain of any
// gene on that side. An extension never shrinks the basal domain.
func computeBasalPlusExt(genes []*Gene, chromSize, upstream, downstream, maxExt int) {
	n := len(genes)
	if n == 0 {
		return
	}

	basalStart := make([]int, n)
	basalEnd := make([]int, n)
	for i, g := range genes {
		basalStart[i], basalEnd[i] = basal(g, upstream, downstream)
	}

	// leftLimit[i]: furthest basal end among genes before i.
	// rightLimit[i]: nearest basal start among genes after i.
	leftLimit := make([]int, n)
	rightLimit := make([]int, n)
	leftLimit[0] = 0
	for i := 1; i < n; i++ {
		leftLimit[i] = max(leftLimit[i-1], basalEnd[i-1])
	}
	rightLimit[n-1] = chromSize
	for i := n - 2; i >= 0; i-- {
		rightLimit[i] = min(rightLimit[i+1], basalStart[i+1])
	}

	for i, g := range genes {
		left := max(0, g.TSS-maxExt, leftLimit[i])
		right := min(chromSize, g.TSS+maxExt, rightLimit[i])

		g.RegStart, g.RegEnd = clampDomain(min(basalStart[i], left), max(basalEnd[i], right), chromSize)
	}
}

// computeTwoClosest extends each domain to the midpoints between the TSS
// and the neighbouring TSSs, limited by maxExt and the chromosome bounds.
func computeTwoClosest(genes []*Gene, chromSize, maxExt int) {
	n := len(genes)
	for i, g := range genes {
		regStart := max(0, g.TSS-maxExt)
		if i > 0 {
			regStart = max(regStart, (g.TSS+genes[i-1].TSS)/2)
		}

		regEnd := min(chromSize, g.TSS+maxExt)
		if i < n-1 {
			regEnd = min(regEnd, (g.TSS+genes[i+1].TSS)/2)
		}

		g.RegStart, g.RegEnd = clampDomain(regStart, regEnd, chromSize)
	}
}

// computeOneClosest uses the midpoint model of computeTwoClosest.
// TODO: implement GREAT's single-nearest-gene definition once twoClosest
// extends to the neighbouring TSS rather than the midpoint.
func computeOneClosest(genes []*Gene, chromSize, maxExt int) {
	computeTwoClosest(genes, chromSize, maxExt)
}

// clampDomain keeps 0 <= start <= end <= chromSize. Genes placed beyond a
// chromosome's stated size collapse to a zero-width domain at the boundary.
func clampDomain(start, end, chromSize int) (int, int) {
	start = max(0, start)
	end = min(chromSize, end)
	if start > end {
		start = end
	}
	if end < 0 {
		start, end = 0, 0
	}
	return start, end
}

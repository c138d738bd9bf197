// Package stats provides the upper-tail tests and multiple-testing
// corrections used to score gene-set terms.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/combin"
)

// BinomialTest returns P(X >= observed) for X ~ Binomial(total, fraction)
// and the fold enrichment observed / (total * fraction). A zero total or
// fraction yields p = 1 and fold = 0.
func BinomialTest(observed, total int, fraction float64) (p, fold float64) {
	if total == 0 || fraction == 0 {
		return 1, 0
	}

	expected := float64(total) * fraction
	if expected > 0 {
		fold = float64(observed) / expected
	}

	return binomialSurvival(observed, total, math.Min(fraction, 1)), fold
}

// binomialSurvival returns P(X >= k) for X ~ Binomial(n, p) as the
// regularized incomplete beta I_p(k, n-k+1), which keeps full relative
// precision far below machine epsilon.
func binomialSurvival(k, n int, p float64) float64 {
	switch {
	case k <= 0:
		return 1
	case k > n:
		return 0
	case p >= 1:
		return 1
	}
	return clampP(mathext.RegIncBeta(float64(k), float64(n-k+1), p))
}

// HypergeometricTest returns P(X >= observed) when drawing draws genes
// without replacement from population genes of which successes belong to
// the term, and the fold enrichment over draws * successes / population.
// A zero draws, successes or population yields p = 1 and fold = 0.
func HypergeometricTest(observed, draws, successes, population int) (p, fold float64) {
	if draws == 0 || successes == 0 || population == 0 {
		return 1, 0
	}

	expected := float64(draws) * float64(successes) / float64(population)
	if expected > 0 {
		fold = float64(observed) / expected
	}

	return hypergeomSurvival(observed, draws, successes, population), fold
}

// hypergeomSurvival sums the hypergeometric pmf from observed to its
// support maximum in log space.
func hypergeomSurvival(observed, draws, successes, population int) float64 {
	if draws > population || successes > population {
		return 1
	}
	lo := max(0, draws-(population-successes))
	hi := min(draws, successes)
	if observed <= lo {
		return 1
	}
	if observed > hi {
		return 0
	}

	N, K, n := float64(population), float64(successes), float64(draws)
	logTotal := combin.LogGeneralizedBinomial(N, n)

	terms := make([]float64, 0, hi-observed+1)
	for i := observed; i <= hi; i++ {
		x := float64(i)
		terms = append(terms,
			combin.LogGeneralizedBinomial(K, x)+combin.LogGeneralizedBinomial(N-K, n-x)-logTotal)
	}
	return clampP(math.Exp(floats.LogSumExp(terms)))
}

// clampP guards against rounding pushing a probability outside [0, 1].
func clampP(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

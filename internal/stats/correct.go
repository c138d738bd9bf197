package stats

import (
	"math"
	"sort"
)

// Bonferroni returns min(p * n, 1) for each of the n p-values.
func Bonferroni(p []float64) []float64 {
	n := float64(len(p))
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = math.Min(v*n, 1)
	}
	return out
}

// BenjaminiHochberg returns the step-up false discovery rate adjusted
// p-values, in input order. Every adjusted value is at least the raw
// p-value and at most 1.
func BenjaminiHochberg(p []float64) []float64 {
	n := len(p)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	order := argsort(p)
	prev := 1.0
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		q := math.Min(p[idx]*float64(n)/float64(i+1), prev)
		out[idx] = q
		prev = q
	}
	return out
}

// Rank returns 1-based ranks by ascending value. Ties receive the average
// of the ranks they span.
func Rank(v []float64) []float64 {
	order := argsort(v)
	ranks := make([]float64, len(v))
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) && v[order[j]] == v[order[i]] {
			j++
		}
		// positions i..j-1 hold ranks i+1..j
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}

// argsort returns the indices of v in ascending order, ties in input order.
func argsort(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return v[idx[a]] < v[idx[b]]
	})
	return idx
}

// Package stats compares field-reported against station-reported
// measurements with per-group hypothesis tests.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Welch runs a two-sample difference-of-means test without the equal
// variance assumption and returns the t statistic and two-sided p-value.
// The two samples come from structurally different measurement processes,
// so their noise must be allowed to differ.
//
// With fewer than two observations on either side, or zero variance in
// both samples, the test is undefined and both results are NaN. Callers
// must not treat NaN as "not significant".
func Welch(a, b []float64) (t, p float64) {
	n1, n2 := float64(len(a)), float64(len(b))
	if n1 < 2 || n2 < 2 {
		return math.NaN(), math.NaN()
	}

	m1 := stat.Mean(a, nil)
	m2 := stat.Mean(b, nil)
	v1 := stat.Variance(a, nil)
	v2 := stat.Variance(b, nil)

	se2 := v1/n1 + v2/n2
	if se2 == 0 {
		return math.NaN(), math.NaN()
	}

	t = (m1 - m2) / math.Sqrt(se2)

	// Welch-Satterthwaite degrees of freedom.
	df := se2 * se2 / (v1*v1/(n1*n1*(n1-1)) + v2*v2/(n2*n2*(n2-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, p
}

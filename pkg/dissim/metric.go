// Package dissim is the distance engine of the pipeline: pairwise
// community dissimilarity under two metrics, distance-to-control scoring,
// and reps-weighted merging of scored records.
//
// Missing values are math.NaN() throughout. A community whose species all
// lack a trait value has an undefined community-weighted mean; that NaN is
// carried into distances and dropped (never zeroed) when records are
// merged.
package dissim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Metric selects the dissimilarity semantics. Exactly two exist: whole
// species composition, or the scalar community-weighted mean of one trait.
type Metric int

const (
	// Composition compares full abundance vectors with Bray-Curtis.
	Composition Metric = iota
	// TraitMean reduces each community to a trait CWM and compares the
	// scalars by absolute difference.
	TraitMean
)

// MetricFor maps a trait name to its metric. compositionTrait is the
// pseudo-trait name (conventionally "cover") that requests Composition.
func MetricFor(trait, compositionTrait string) Metric {
	if trait == compositionTrait {
		return Composition
	}
	return TraitMean
}

// BrayCurtis returns the Bray-Curtis dissimilarity of two abundance
// vectors: sum|a-b| / sum(a+b). Bounded in [0,1], 0 for identical vectors,
// 1 for vectors sharing no species, insensitive to joint absences. Two
// all-zero vectors are identical, so the zero denominator yields 0.
func BrayCurtis(a, b []float64) float64 {
	var num, den float64
	for i := range a {
		num += math.Abs(a[i] - b[i])
		den += a[i] + b[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// CWM returns the community-weighted mean of a trait: the abundance-
// weighted average of traitVals over species with a non-missing value.
// Weights are renormalized over those species. When no species contributes
// usable weight the CWM is undefined and NaN is returned.
func CWM(abund, traitVals []float64) float64 {
	var sumWX, sumW float64
	for i, w := range abund {
		t := traitVals[i]
		if math.IsNaN(t) {
			continue
		}
		sumWX += w * t
		sumW += w
	}
	if sumW == 0 {
		return math.NaN()
	}
	return sumWX / sumW
}

// Matrix computes the full pairwise dissimilarity matrix of the given
// abundance rows: symmetric, zero diagonal, NaN-propagating. traitVals is
// ignored for the Composition metric. Returns nil for zero rows, where no
// pairwise distance exists.
func Matrix(rows [][]float64, traitVals []float64, metric Metric) *mat.SymDense {
	n := len(rows)
	if n == 0 {
		return nil
	}
	dm := mat.NewSymDense(n, nil)

	if metric == Composition {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dm.SetSym(i, j, BrayCurtis(rows[i], rows[j]))
			}
		}
		return dm
	}

	cwms := make([]float64, n)
	for i, r := range rows {
		cwms[i] = CWM(r, traitVals)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dm.SetSym(i, j, math.Abs(cwms[i]-cwms[j]))
		}
	}
	return dm
}

// TotalAbundance returns the summed abundance of a community vector.
func TotalAbundance(abund []float64) float64 {
	return floats.Sum(abund)
}

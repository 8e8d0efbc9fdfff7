package dissim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MergeRecords collapses records into one record per group key. The merged
// dissimilarity is the reps-weighted mean of the group's non-missing
// dissimilarities; the merged reps is the sum of contributing reps.
// NaN records and records without weight are dropped before accumulation.
//
// The collapse is associative and commutative up to float tolerance:
// merging any partitioning of the input batch-by-batch equals merging all
// records at once. This is what lets the streaming aggregator bound its
// buffer without changing the final answer.
func MergeRecords(recs []Record) []Record {
	type acc struct {
		vals    []float64
		weights []float64
		reps    int
	}

	groups := make(map[GroupKey]*acc)
	var order []GroupKey
	for _, r := range recs {
		if r.Reps <= 0 || math.IsNaN(r.Dissim) {
			continue
		}
		k := r.Key()
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		a.vals = append(a.vals, r.Dissim)
		a.weights = append(a.weights, float64(r.Reps))
		a.reps += r.Reps
	}

	res := make([]Record, 0, len(order))
	for _, k := range order {
		a := groups[k]
		res = append(res, Record{
			Trait:  k.Trait,
			TurfID: k.TurfID,
			Year:   k.Year,
			M:      k.M,
			D:      k.D,
			Dissim: stat.Mean(a.vals, a.weights),
			Reps:   a.reps,
		})
	}
	SortRecords(res)
	return res
}

// SortRecords orders records deterministically:
// trait, turfID, year, d, m.
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Trait != b.Trait {
			return a.Trait < b.Trait
		}
		if a.TurfID != b.TurfID {
			return a.TurfID < b.TurfID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.D != b.D {
			return a.D < b.D
		}
		return a.M < b.M
	})
}

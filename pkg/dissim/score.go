package dissim

import (
	"fmt"
	"math"

	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
)

// Record is one distance-to-control observation, the unit of pipeline
// output. Observed (field) records carry the zero ParamPair; simulated
// records carry the run's (m, d). Reps is the number of underlying
// observations the record represents, used as the weight when records
// with the same key are merged.
type Record struct {
	Trait  string
	TurfID string
	Year   int
	M      float64
	D      int
	Dissim float64
	Reps   int
}

// GroupKey identifies the merge group of a record.
type GroupKey struct {
	Trait  string
	TurfID string
	Year   int
	M      float64
	D      int
}

// Key returns the merge group of the record.
func (r Record) Key() GroupKey {
	return GroupKey{Trait: r.Trait, TurfID: r.TurfID, Year: r.Year, M: r.M, D: r.D}
}

// SimRun is one simulated community: a parameterized replicate of one turf
// in one year, with abundances aligned to the field species universe.
type SimRun struct {
	TurfID string
	Year   int
	M      float64
	D      int
	Abund  []float64
}

// Engine scores communities against their matched field controls. The
// field tables are read-only reference data shared by all scoring calls.
type Engine struct {
	Comm             *ecotab.CommunityTable
	Meta             *ecotab.MetaTable
	Traits           *ecotab.TraitTable
	CompositionTrait string
}

// traitValues resolves per-species trait values for a trait, or nil for
// the composition pseudo-trait.
func (e *Engine) traitValues(trait string) ([]float64, error) {
	if MetricFor(trait, e.CompositionTrait) == Composition {
		return nil, nil
	}
	return e.Traits.Values(trait, e.Comm.Species)
}

// ScoreObserved computes, for every field community row, the mean
// dissimilarity to its matched controls under the given trait. Rows
// without metadata, without controls, or with only undefined distances
// yield a NaN record; the merge step drops those.
func (e *Engine) ScoreObserved(trait string) ([]Record, error) {
	tv, err := e.traitValues(trait)
	if err != nil {
		return nil, err
	}
	if e.Comm.Len() == 0 {
		return []Record{}, nil
	}

	rows := make([][]float64, e.Comm.Len())
	for i, r := range e.Comm.Rows {
		rows[i] = r.Abund
	}
	dm := Matrix(rows, tv, MetricFor(trait, e.CompositionTrait))

	res := make([]Record, 0, e.Comm.Len())
	for i, r := range e.Comm.Rows {
		key := ecotab.Key(r.TurfID, r.Year)
		rec := Record{
			Trait:  trait,
			TurfID: r.TurfID,
			Year:   r.Year,
			Dissim: math.NaN(),
			Reps:   1,
		}

		meta, ok := e.Meta.Lookup(key)
		if ok {
			ctls := e.Meta.Controls(meta.DestSiteID, meta.Year, key)
			var sum float64
			var n int
			for _, ck := range ctls {
				j, ok := e.Comm.RowIndex(ck)
				if !ok {
					continue
				}
				d := dm.At(i, j)
				if math.IsNaN(d) {
					continue
				}
				sum += d
				n++
			}
			if n > 0 {
				rec.Dissim = sum / float64(n)
			}
		}
		res = append(res, rec)
	}
	return res, nil
}

// ScoreSimulated scores one simulated community against the real field
// controls of its turf's destination site and year. The simulated vector
// stands in for the focal turf; field controls are never replaced, so
// replicates sharing a turf/year cannot contaminate each other. Returns
// false when the turf is unknown to the metadata table.
func (e *Engine) ScoreSimulated(run SimRun, trait string) (Record, bool, error) {
	if len(run.Abund) != len(e.Comm.Species) {
		return Record{}, false, fmt.Errorf(
			"simulated run %s: %d abundances for %d species",
			ecotab.Key(run.TurfID, run.Year), len(run.Abund), len(e.Comm.Species),
		)
	}

	dest, ok := e.Meta.DestSite(run.TurfID)
	if !ok {
		return Record{}, false, nil
	}

	tv, err := e.traitValues(trait)
	if err != nil {
		return Record{}, false, err
	}
	metric := MetricFor(trait, e.CompositionTrait)

	focal := ecotab.Key(run.TurfID, run.Year)
	ctls := e.Meta.Controls(dest, run.Year, focal)

	var sum float64
	var n int
	for _, ck := range ctls {
		ctl, ok := e.Comm.Row(ck)
		if !ok {
			continue
		}
		var d float64
		if metric == Composition {
			d = BrayCurtis(run.Abund, ctl)
		} else {
			d = math.Abs(CWM(run.Abund, tv) - CWM(ctl, tv))
		}
		if math.IsNaN(d) {
			continue
		}
		sum += d
		n++
	}

	rec := Record{
		Trait:  trait,
		TurfID: run.TurfID,
		Year:   run.Year,
		M:      run.M,
		D:      run.D,
		Dissim: math.NaN(),
		Reps:   1,
	}
	if n > 0 {
		rec.Dissim = sum / float64(n)
	}
	return rec, true, nil
}

package ecotab

import (
	"fmt"
	"math"
)

// TraitTable holds numeric trait values per species. A missing value for a
// species/trait pair is represented as NaN and excluded from
// community-weighted means by the distance engine.
type TraitTable struct {
	Traits []string

	values map[string]map[string]float64
}

// NewTraitTable creates an empty trait table for the given trait names.
func NewTraitTable(traits []string) *TraitTable {
	return &TraitTable{
		Traits: traits,
		values: make(map[string]map[string]float64),
	}
}

// Set stores one trait value for a species. Use NaN for a missing value.
func (t *TraitTable) Set(species, trait string, val float64) {
	m, ok := t.values[species]
	if !ok {
		m = make(map[string]float64, len(t.Traits))
		t.values[species] = m
	}
	m[trait] = val
}

// Has reports whether the table knows the trait name.
func (t *TraitTable) Has(trait string) bool {
	for _, tr := range t.Traits {
		if tr == trait {
			return true
		}
	}
	return false
}

// Values returns trait values aligned to a species universe. Species absent
// from the table, or with a missing value, yield NaN.
func (t *TraitTable) Values(trait string, species []string) ([]float64, error) {
	if !t.Has(trait) {
		return nil, fmt.Errorf("unknown trait %q", trait)
	}
	res := make([]float64, len(species))
	for i, sp := range species {
		v, ok := t.values[sp][trait]
		if !ok {
			v = math.NaN()
		}
		res[i] = v
	}
	return res, nil
}

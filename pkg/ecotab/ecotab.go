// Package ecotab provides the tabular data model of the transplant
// experiment: the field community table, turf metadata, per-species traits
// and the target parameter set used to filter the simulation corpus.
//
// The package is pure: it holds parsed tables and answers lookups.
// Reading and writing files lives in internal/iotables.
package ecotab

import (
	"fmt"
	"strconv"
)

// Key builds the composite turf.year key that uniquely identifies one row
// of a community table.
func Key(turfID string, year int) string {
	return turfID + "_" + strconv.Itoa(year)
}

// CommunityRow is one turf observation: an abundance vector over the
// species universe of its table.
type CommunityRow struct {
	TurfID string
	Year   int
	Abund  []float64
}

// CommunityTable holds community composition vectors with a fixed species
// universe. Every row has exactly one abundance per species, in the order
// of Species.
type CommunityTable struct {
	Species []string
	Rows    []CommunityRow

	index map[string]int
}

// NewCommunityTable creates an empty community table over the given
// species universe.
func NewCommunityTable(species []string) *CommunityTable {
	return &CommunityTable{
		Species: species,
		index:   make(map[string]int),
	}
}

// Append adds one turf observation. The abundance vector must match the
// species universe in length, and the turf.year key must be unique.
func (t *CommunityTable) Append(turfID string, year int, abund []float64) error {
	if len(abund) != len(t.Species) {
		return fmt.Errorf(
			"community row %s: %d abundances for %d species",
			Key(turfID, year), len(abund), len(t.Species),
		)
	}
	key := Key(turfID, year)
	if _, ok := t.index[key]; ok {
		return fmt.Errorf("community row %s: duplicate turf.year key", key)
	}
	t.index[key] = len(t.Rows)
	t.Rows = append(t.Rows, CommunityRow{TurfID: turfID, Year: year, Abund: abund})
	return nil
}

// Row returns the abundance vector stored under the turf.year key.
func (t *CommunityTable) Row(key string) ([]float64, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.Rows[i].Abund, true
}

// RowIndex returns the position of the turf.year key in Rows.
func (t *CommunityTable) RowIndex(key string) (int, bool) {
	i, ok := t.index[key]
	return i, ok
}

// Len returns the number of turf observations in the table.
func (t *CommunityTable) Len() int {
	return len(t.Rows)
}

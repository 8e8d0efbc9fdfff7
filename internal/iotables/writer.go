package iotables

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/guittarj/TraitsTransplants/pkg/dissim"
)

// WriteSummary writes the merged simulation summary:
// trait, turfID, year, m, d, dissimilarity. The reps weight is internal
// to merging and is dropped from the finalized table.
func WriteSummary(path string, recs []dissim.Record) error {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows,
		[]string{"trait", "turfID", "year", "m", "d", "dissimilarity"})
	for _, r := range recs {
		rows = append(rows, []string{
			r.Trait,
			r.TurfID,
			strconv.Itoa(r.Year),
			formatFloat(r.M),
			strconv.Itoa(r.D),
			formatFloat(r.Dissim),
		})
	}
	return writeCSV(path, rows)
}

// WriteObserved writes the field-only distance table:
// trait, turfID, year, dissimilarity. Missing distances (no controls, or
// an undefined CWM) are written as NA.
func WriteObserved(path string, recs []dissim.Record) error {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, []string{"trait", "turfID", "year", "dissimilarity"})
	for _, r := range recs {
		rows = append(rows, []string{
			r.Trait,
			r.TurfID,
			strconv.Itoa(r.Year),
			formatFloat(r.Dissim),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return WriteFileError(path, err)
	}

	w := csv.NewWriter(f)
	if err = w.WriteAll(rows); err != nil {
		_ = f.Close()
		return WriteFileError(path, err)
	}
	if err = f.Close(); err != nil {
		return WriteFileError(path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

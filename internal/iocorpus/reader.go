package iocorpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/guittarj/TraitsTransplants/pkg/dissim"
	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
)

// ReadRuns reads one corpus batch file: turfID, year, m, d, one column per
// species. Species columns are matched by name against the field species
// universe; the sets must be identical, but the order may differ.
// Immigration rates are rounded to digits significant digits so merge
// groups line up with the target table.
func ReadRuns(path string, species []string, digits int) ([]dissim.SimRun, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadFileError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, ReadFileError(path, err)
	}
	if len(all) == 0 {
		return nil, BadFormatError(path, fmt.Errorf("empty file"))
	}

	header := all[0]
	if len(header) != 4+len(species) ||
		header[0] != "turfID" || header[1] != "year" ||
		header[2] != "m" || header[3] != "d" {
		return nil, BadFormatError(path,
			fmt.Errorf("header must be turfID,year,m,d,<species...>"))
	}

	// perm[i] is the column (within the species block) holding the i-th
	// species of the field universe.
	perm, err := speciesPermutation(species, header[4:])
	if err != nil {
		return nil, BadFormatError(path, err)
	}

	runs := make([]dissim.SimRun, 0, len(all)-1)
	for n, row := range all[1:] {
		if len(row) != len(header) {
			return nil, BadFormatError(path,
				fmt.Errorf("line %d: expected %d columns, got %d",
					n+2, len(header), len(row)))
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, BadFormatError(path,
				fmt.Errorf("line %d: bad year: %w", n+2, err))
		}
		m, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, BadFormatError(path,
				fmt.Errorf("line %d: bad m: %w", n+2, err))
		}
		d, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, BadFormatError(path,
				fmt.Errorf("line %d: bad d: %w", n+2, err))
		}

		abund := make([]float64, len(species))
		for i, col := range perm {
			v, err := strconv.ParseFloat(row[4+col], 64)
			if err != nil {
				return nil, BadFormatError(path,
					fmt.Errorf("line %d: bad abundance: %w", n+2, err))
			}
			if v < 0 {
				return nil, BadFormatError(path,
					fmt.Errorf("line %d: negative abundance %v", n+2, v))
			}
			abund[i] = v
		}

		runs = append(runs, dissim.SimRun{
			TurfID: row[0],
			Year:   year,
			M:      ecotab.SignifRound(m, digits),
			D:      d,
			Abund:  abund,
		})
	}
	return runs, nil
}

func speciesPermutation(universe, cols []string) ([]int, error) {
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[c] = i
	}
	if len(byName) != len(cols) {
		return nil, fmt.Errorf("duplicate species columns")
	}
	perm := make([]int, len(universe))
	for i, sp := range universe {
		col, ok := byName[sp]
		if !ok {
			return nil, fmt.Errorf("species %q missing from file", sp)
		}
		perm[i] = col
	}
	return perm, nil
}

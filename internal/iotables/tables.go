// Package iotables reads the reference tables of the pipeline (field
// cover, turf metadata, species traits, target parameters) and writes the
// summary outputs. All tables are comma-delimited with a header row.
// Paths are explicit parameters; nothing here consults the working
// directory implicitly.
package iotables

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
)

// ReadCover reads a community table: turfID, year, one column per species.
func ReadCover(path string) (*ecotab.CommunityTable, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(header) < 3 || header[0] != "turfID" || header[1] != "year" {
		return nil, HeaderError(path, "turfID,year,<species...>")
	}

	species := header[2:]
	t := ecotab.NewCommunityTable(species)
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, RowLengthError(path, n+2, len(header), len(row))
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, FieldError(path, n+2, "year", err)
		}
		abund, err := parseAbundances(row[2:])
		if err != nil {
			return nil, FieldError(path, n+2, "abundance", err)
		}
		if err = t.Append(row[0], year, abund); err != nil {
			return nil, FieldError(path, n+2, "turf.year", err)
		}
	}
	return t, nil
}

// ReadMeta reads the turf metadata table:
// turfID, siteID, destSiteID, year, treatment.
func ReadMeta(path string, controlTreatments []string) (*ecotab.MetaTable, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(path, header,
		"turfID", "siteID", "destSiteID", "year", "treatment")
	if err != nil {
		return nil, err
	}

	metas := make([]ecotab.TurfMeta, 0, len(rows))
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, RowLengthError(path, n+2, len(header), len(row))
		}
		year, err := strconv.Atoi(row[col["year"]])
		if err != nil {
			return nil, FieldError(path, n+2, "year", err)
		}
		metas = append(metas, ecotab.TurfMeta{
			TurfID:     row[col["turfID"]],
			SiteID:     row[col["siteID"]],
			DestSiteID: row[col["destSiteID"]],
			Year:       year,
			Treatment:  row[col["treatment"]],
		})
	}
	return ecotab.NewMetaTable(metas, controlTreatments), nil
}

// ReadTraits reads the per-species trait table: species, one numeric
// column per trait. Empty cells and "NA" are missing values.
func ReadTraits(path string) (*ecotab.TraitTable, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 || header[0] != "species" {
		return nil, HeaderError(path, "species,<trait...>")
	}

	traits := header[1:]
	t := ecotab.NewTraitTable(traits)
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, RowLengthError(path, n+2, len(header), len(row))
		}
		for i, trait := range traits {
			v, err := parseCell(row[i+1])
			if err != nil {
				return nil, FieldError(path, n+2, trait, err)
			}
			t.Set(row[0], trait, v)
		}
	}
	return t, nil
}

// ReadTargets reads the target parameter table: site, d, m. The
// immigration rate is rounded to digits significant digits on entry.
func ReadTargets(path string, digits int) (*ecotab.TargetSet, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(path, header, "site", "d", "m")
	if err != nil {
		return nil, err
	}

	t := ecotab.NewTargetSet(digits)
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, RowLengthError(path, n+2, len(header), len(row))
		}
		d, err := strconv.Atoi(row[col["d"]])
		if err != nil {
			return nil, FieldError(path, n+2, "d", err)
		}
		m, err := strconv.ParseFloat(row[col["m"]], 64)
		if err != nil {
			return nil, FieldError(path, n+2, "m", err)
		}
		if m < 0 || m > 1 {
			return nil, FieldError(path, n+2, "m",
				fmt.Errorf("immigration rate %v outside [0,1]", m))
		}
		t.Add(row[col["site"]], d, m)
	}
	return t, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, ReadFileError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, ReadFileError(path, err)
	}
	if len(all) == 0 {
		return nil, nil, HeaderError(path, "non-empty header row")
	}
	return all[0], all[1:], nil
}

// columnIndex maps required column names to their positions in the header.
func columnIndex(path string, header []string, names ...string) (map[string]int, error) {
	col := make(map[string]int, len(names))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range names {
		if _, ok := col[name]; !ok {
			return nil, HeaderError(path, name)
		}
	}
	return col, nil
}

func parseAbundances(cells []string) ([]float64, error) {
	res := make([]float64, len(cells))
	for i, c := range cells {
		if c == "" {
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative abundance %v", v)
		}
		res[i] = v
	}
	return res, nil
}

// parseCell parses one numeric cell, mapping empty and "NA" to NaN.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

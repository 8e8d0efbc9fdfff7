// Package iocorpus streams the simulation corpus: it discovers batch
// files, pre-filters them by the (d, m) pair encoded in their names, reads
// the surviving files, and aggregates distance-to-control records into a
// bounded running summary.
package iocorpus

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
)

// FileInfo describes one corpus batch file and the parameters encoded in
// its name.
type FileInfo struct {
	Path string
	D    int
	M    float64
	Rep  int
}

// Corpus files are named sim_d<d>_m<m>_r<rep>.csv, where <m> is a decimal
// or scientific-notation immigration rate.
var fileNameRx = regexp.MustCompile(
	`^sim_d(\d+)_m([0-9]*\.?[0-9]+(?:[eE][+-]?[0-9]+)?)_r(\d+)\.csv$`,
)

// ParseFileName extracts (d, m, rep) from a corpus file name. Returns
// false for names that do not follow the corpus convention.
func ParseFileName(name string) (d int, m float64, rep int, ok bool) {
	sub := fileNameRx.FindStringSubmatch(name)
	if sub == nil {
		return 0, 0, 0, false
	}
	d, err := strconv.Atoi(sub[1])
	if err != nil {
		return 0, 0, 0, false
	}
	m, err = strconv.ParseFloat(sub[2], 64)
	if err != nil {
		return 0, 0, 0, false
	}
	rep, err = strconv.Atoi(sub[3])
	if err != nil {
		return 0, 0, 0, false
	}
	return d, m, rep, true
}

// Scan lists corpus files in dir whose (d, m) pair is requested by any
// site of the target set. Files that cannot contribute are never opened.
// Returns the matching files and the total number of corpus-named files
// seen. Scanning an already-filtered list against the same target set
// changes nothing.
func Scan(dir string, targets *ecotab.TargetSet) ([]FileInfo, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, ScanDirError(dir, err)
	}

	var files []FileInfo
	var seen int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, m, rep, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		seen++
		if !targets.HasPair(d, m) {
			continue
		}
		files = append(files, FileInfo{
			Path: filepath.Join(dir, e.Name()),
			D:    d,
			M:    m,
			Rep:  rep,
		})
	}
	return files, seen, nil
}

package ecotab

import (
	"math"
)

// ParamPair is one (replacement rate, immigration rate) point of the
// neutral model. M is stored rounded to the target set's significant
// digits, so pairs compare cleanly despite float noise in file names and
// upstream serialization.
type ParamPair struct {
	D int
	M float64
}

// TargetSet is the calibrated parameter table: which (d, m) pair to retain
// per destination site. Membership is tested at two granularities: whole
// pair (file-level pre-filter, any site) and site-qualified pair
// (row-level filter).
type TargetSet struct {
	digits int
	bySite map[string]map[ParamPair]struct{}
	pairs  map[ParamPair]struct{}
}

// NewTargetSet creates an empty target set that rounds immigration rates
// to the given number of significant digits before comparison.
func NewTargetSet(digits int) *TargetSet {
	return &TargetSet{
		digits: digits,
		bySite: make(map[string]map[ParamPair]struct{}),
		pairs:  make(map[ParamPair]struct{}),
	}
}

// Add records a target (d, m) pair for a site.
func (t *TargetSet) Add(site string, d int, m float64) {
	p := ParamPair{D: d, M: SignifRound(m, t.digits)}
	s, ok := t.bySite[site]
	if !ok {
		s = make(map[ParamPair]struct{})
		t.bySite[site] = s
	}
	s[p] = struct{}{}
	t.pairs[p] = struct{}{}
}

// HasPair reports whether (d, m) is requested by any site. Used for the
// file-level pre-filter, where the file name does not reveal sites.
func (t *TargetSet) HasPair(d int, m float64) bool {
	p := ParamPair{D: d, M: SignifRound(m, t.digits)}
	_, ok := t.pairs[p]
	return ok
}

// HasSitePair reports whether (d, m) is requested for the given site.
func (t *TargetSet) HasSitePair(site string, d int, m float64) bool {
	p := ParamPair{D: d, M: SignifRound(m, t.digits)}
	_, ok := t.bySite[site][p]
	return ok
}

// Len returns the number of sites with at least one target pair.
func (t *TargetSet) Len() int {
	return len(t.bySite)
}

// SignifRound rounds x to the given number of significant digits.
// NaN, infinities and zero are returned unchanged.
func SignifRound(x float64, digits int) float64 {
	if digits <= 0 || x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	mag := math.Pow(10, float64(digits-1)-math.Floor(math.Log10(math.Abs(x))))
	return math.Round(x*mag) / mag
}

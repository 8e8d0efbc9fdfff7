package ecotab

// TurfMeta is one turf observation record: where the turf came from, where
// it sits after transplanting, and how it was treated.
type TurfMeta struct {
	TurfID     string
	SiteID     string
	DestSiteID string
	Year       int
	Treatment  string
}

// Key returns the composite turf.year key of the record.
func (m TurfMeta) Key() string {
	return Key(m.TurfID, m.Year)
}

// MetaTable holds turf metadata and answers control-matching queries.
type MetaTable struct {
	rows     []TurfMeta
	byKey    map[string]TurfMeta
	controls map[string]struct{}

	// destByTurf maps turfID to its destination site; simulated runs carry
	// only the turfID, so their site membership is resolved here.
	destByTurf map[string]string
}

// NewMetaTable builds a metadata table. controlTreatments lists the
// treatment codes that mark a turf as an untransplanted control
// (TTC and TT1 in the TRANSPLANT design).
func NewMetaTable(rows []TurfMeta, controlTreatments []string) *MetaTable {
	t := &MetaTable{
		rows:       rows,
		byKey:      make(map[string]TurfMeta, len(rows)),
		controls:   make(map[string]struct{}, len(controlTreatments)),
		destByTurf: make(map[string]string),
	}
	for _, c := range controlTreatments {
		t.controls[c] = struct{}{}
	}
	for _, r := range rows {
		t.byKey[r.Key()] = r
		t.destByTurf[r.TurfID] = r.DestSiteID
	}
	return t
}

// Lookup returns the metadata record stored under the turf.year key.
func (t *MetaTable) Lookup(key string) (TurfMeta, bool) {
	m, ok := t.byKey[key]
	return m, ok
}

// DestSite returns the destination site of a turf, if the turf is known.
func (t *MetaTable) DestSite(turfID string) (string, bool) {
	s, ok := t.destByTurf[turfID]
	return s, ok
}

// IsControl reports whether a treatment code marks a control turf.
func (t *MetaTable) IsControl(treatment string) bool {
	_, ok := t.controls[treatment]
	return ok
}

// Controls returns the turf.year keys of the control communities a focal
// turf is compared against: same destination site, same year, control
// treatment, focal excluded. The result is empty (not an error) when no
// qualifying controls exist; callers must treat a mean over the empty set
// as missing.
func (t *MetaTable) Controls(destSiteID string, year int, focalKey string) []string {
	var res []string
	for _, r := range t.rows {
		if r.DestSiteID != destSiteID || r.Year != year {
			continue
		}
		if !t.IsControl(r.Treatment) {
			continue
		}
		key := r.Key()
		if key == focalKey {
			continue
		}
		res = append(res, key)
	}
	return res
}

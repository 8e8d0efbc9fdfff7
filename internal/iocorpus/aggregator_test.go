package iocorpus_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guittarj/TraitsTransplants/internal/iocorpus"
	"github.com/guittarj/TraitsTransplants/pkg/config"
	"github.com/guittarj/TraitsTransplants/pkg/dissim"
	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
	"github.com/guittarj/TraitsTransplants/pkg/pipeline"
)

// fieldEngine builds the shared field tables: two controls and one
// transplant at site vik in 2011, disjoint species, trait values 2, 4, 6.
func fieldEngine(t *testing.T) *dissim.Engine {
	t.Helper()

	comm := ecotab.NewCommunityTable([]string{"s1", "s2", "s3"})
	require.NoError(t, comm.Append("c1", 2011, []float64{1, 0, 0}))
	require.NoError(t, comm.Append("c2", 2011, []float64{0, 1, 0}))
	require.NoError(t, comm.Append("t1", 2011, []float64{0, 0, 1}))

	meta := ecotab.NewMetaTable([]ecotab.TurfMeta{
		{TurfID: "c1", SiteID: "vik", DestSiteID: "vik", Year: 2011, Treatment: "TTC"},
		{TurfID: "c2", SiteID: "vik", DestSiteID: "vik", Year: 2011, Treatment: "TT1"},
		{TurfID: "t1", SiteID: "gud", DestSiteID: "vik", Year: 2011, Treatment: "TT2"},
	}, []string{"TTC", "TT1"})

	traits := ecotab.NewTraitTable([]string{"tv"})
	traits.Set("s1", "tv", 2)
	traits.Set("s2", "tv", 4)
	traits.Set("s3", "tv", 6)

	return &dissim.Engine{
		Comm:             comm,
		Meta:             meta,
		Traits:           traits,
		CompositionTrait: "cover",
	}
}

func testConfig(corpusDir string) *config.Config {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptCorpusDir(corpusDir),
		config.OptTraits([]string{"cover", "tv"}),
		config.OptJobsNumber(2),
	})
	return cfg
}

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t,
		os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func findSummary(recs []dissim.Record, trait string, year int) (dissim.Record, bool) {
	for _, r := range recs {
		if r.Trait == trait && r.TurfID == "t1" && r.Year == year {
			return r, true
		}
	}
	return dissim.Record{}, false
}

func TestSummarizeFiltersByTargets(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,0,0,1\n")
	writeCorpusFile(t, dir, "sim_d50_m0.9_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.9,50,1,0,0\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.FilesSeen)
	assert.Equal(t, 1, res.Stats.FilesMatched)
	assert.Equal(t, 0, res.Stats.FilesFailed)

	// Only the requested (d, m) pair contributes records.
	require.NotEmpty(t, res.Summary)
	for _, r := range res.Summary {
		assert.Equal(t, 5, r.D)
		assert.InDelta(t, 0.1, r.M, 1e-12)
	}

	cover, ok := findSummary(res.Summary, "cover", 2011)
	require.True(t, ok)
	assert.InDelta(t, 1.0, cover.Dissim, 1e-12)
	assert.Equal(t, 1, cover.Reps)

	tv, ok := findSummary(res.Summary, "tv", 2011)
	require.True(t, ok)
	assert.InDelta(t, 3.0, tv.Dissim, 1e-12)
}

func TestSummarizeRowLevelFilter(t *testing.T) {
	// A matched file may still carry rows for parameter pairs the target
	// table requests only at other sites; those rows are skipped.
	dir := t.TempDir()
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,0,0,1\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("elsewhere", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.FilesMatched)
	assert.Equal(t, 0, res.Stats.RunsScored)
	assert.Positive(t, res.Stats.RunsSkipped)
	assert.Empty(t, res.Summary)
}

func TestSummarizeMergesReplicates(t *testing.T) {
	dir := t.TempDir()
	// Replicate 1 is disjoint from both controls (distance 1); replicate 2
	// matches control c1 exactly (distances 0 and 1, mean 0.5).
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,0,0,1\n")
	writeCorpusFile(t, dir, "sim_d5_m0.1_r2.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,1,0,0\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	cover, ok := findSummary(res.Summary, "cover", 2011)
	require.True(t, ok)
	assert.InDelta(t, 0.75, cover.Dissim, 1e-12)
	assert.Equal(t, 2, cover.Reps)
}

func TestSummarizeFlushEquivalence(t *testing.T) {
	dir := t.TempDir()
	for rep := 1; rep <= 7; rep++ {
		writeCorpusFile(t, dir,
			fmt.Sprintf("sim_d5_m0.1_r%d.csv", rep),
			fmt.Sprintf(
				"turfID,year,m,d,s1,s2,s3\n"+
					"t1,2011,0.1,5,%d,1,1\n", rep))
	}

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	summaries := make([][]dissim.Record, 0, 2)
	for _, flushEvery := range []int{1, 1000} {
		cfg := testConfig(dir)
		cfg.Update([]config.Option{
			config.OptFlushEvery(flushEvery),
			config.OptJobsNumber(1),
		})
		agg := iocorpus.New(cfg, fieldEngine(t), targets, pipeline.NewMemStore())
		res, err := agg.Summarize(context.Background())
		require.NoError(t, err)
		summaries = append(summaries, res.Summary)
	}

	require.Equal(t, len(summaries[0]), len(summaries[1]))
	for i := range summaries[0] {
		assert.Equal(t, summaries[0][i].Key(), summaries[1][i].Key())
		assert.InDelta(t, summaries[0][i].Dissim, summaries[1][i].Dissim, 1e-9)
		assert.Equal(t, summaries[0][i].Reps, summaries[1][i].Reps)
	}
}

func TestSummarizeBaseline(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,0,0,1\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	// Each summary group gains a pretreatment-year row carrying the
	// observed field distance at the group's earliest year.
	require.Len(t, res.Baseline, 2)
	for _, b := range res.Baseline {
		assert.Equal(t, 2009, b.Year)
		assert.Equal(t, "t1", b.TurfID)
		assert.Equal(t, 5, b.D)
		assert.InDelta(t, 0.1, b.M, 1e-12)
	}

	byTrait := map[string]float64{}
	for _, b := range res.Baseline {
		byTrait[b.Trait] = b.Dissim
	}
	assert.InDelta(t, 1.0, byTrait["cover"], 1e-12)
	assert.InDelta(t, 3.0, byTrait["tv"], 1e-12)
}

func TestSummarizeSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2011,0.1,5,0,0,1\n")
	writeCorpusFile(t, dir, "sim_d5_m0.1_r2.csv", "not,a,corpus\nfile\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.FilesFailed)
	cover, ok := findSummary(res.Summary, "cover", 2011)
	require.True(t, ok)
	assert.Equal(t, 1, cover.Reps)
}

func TestSummarizeEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Stats.FilesSeen)
	assert.Empty(t, res.Summary)
	assert.Empty(t, res.Baseline)
}

func TestSummarizeDropsUndefinedDistances(t *testing.T) {
	// A run in a year with no controls yields a NaN distance that must not
	// surface in the summary.
	dir := t.TempDir()
	writeCorpusFile(t, dir, "sim_d5_m0.1_r1.csv",
		"turfID,year,m,d,s1,s2,s3\n"+
			"t1,2013,0.1,5,0,0,1\n")

	targets := ecotab.NewTargetSet(3)
	targets.Add("vik", 5, 0.1)

	agg := iocorpus.New(testConfig(dir), fieldEngine(t), targets, pipeline.NewMemStore())
	res, err := agg.Summarize(context.Background())
	require.NoError(t, err)

	for _, r := range res.Summary {
		assert.False(t, math.IsNaN(r.Dissim))
	}
	assert.Empty(t, res.Summary)
}

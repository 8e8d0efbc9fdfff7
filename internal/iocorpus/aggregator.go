package iocorpus

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/guittarj/TraitsTransplants/pkg/config"
	"github.com/guittarj/TraitsTransplants/pkg/dissim"
	"github.com/guittarj/TraitsTransplants/pkg/ecotab"
	"github.com/guittarj/TraitsTransplants/pkg/pipeline"
)

// Aggregator implements pipeline.Summarizer: it streams the filtered
// corpus file-by-file, scores every eligible simulated community against
// its field controls for every configured trait, and keeps a bounded
// running summary via reps-weighted merging.
type Aggregator struct {
	cfg     *config.Config
	engine  *dissim.Engine
	targets *ecotab.TargetSet
	store   pipeline.SummaryStore
}

// New creates an Aggregator over the given field tables, target set and
// summary store.
func New(
	cfg *config.Config,
	engine *dissim.Engine,
	targets *ecotab.TargetSet,
	store pipeline.SummaryStore,
) *Aggregator {
	return &Aggregator{cfg: cfg, engine: engine, targets: targets, store: store}
}

var _ pipeline.Summarizer = (*Aggregator)(nil)

// fileResult is the outcome of one corpus file: one record batch per
// configured trait, or a read error. Failed files are logged and skipped;
// the stream continues.
type fileResult struct {
	file    FileInfo
	units   [][]dissim.Record
	scored  int
	skipped int
	err     error
}

// Summarize runs the full corpus pass: scan, fan out file processing
// across workers, fan in to the accumulation buffer, flush periodically,
// and finish with baseline rows copied from observed field distances.
func (a *Aggregator) Summarize(ctx context.Context) (*pipeline.Result, error) {
	start := time.Now()

	files, seen, err := Scan(a.cfg.Paths.CorpusDir, a.targets)
	if err != nil {
		return nil, err
	}
	slog.Info("Corpus scanned",
		"dir", a.cfg.Paths.CorpusDir,
		"files", seen,
		"matched", len(files),
	)

	res := &pipeline.Result{}
	res.Stats.FilesSeen = seen
	res.Stats.FilesMatched = len(files)

	if len(files) > 0 {
		if err = a.stream(ctx, files, &res.Stats); err != nil {
			return nil, err
		}
	}

	res.Summary, err = a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	res.Baseline, err = a.baseline(res.Summary)
	if err != nil {
		return nil, err
	}

	slog.Info("Corpus summarized",
		"files_matched", humanize.Comma(int64(res.Stats.FilesMatched)),
		"files_failed", res.Stats.FilesFailed,
		"runs_scored", humanize.Comma(int64(res.Stats.RunsScored)),
		"runs_skipped", humanize.Comma(int64(res.Stats.RunsSkipped)),
		"groups", len(res.Summary),
		"flushes", res.Stats.Flushes,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// stream fans file processing out to JobsNumber workers and collects the
// per-unit record batches into the accumulation buffer. Only the collector
// touches the buffer and the store.
func (a *Aggregator) stream(
	ctx context.Context,
	files []FileInfo,
	stats *pipeline.Stats,
) error {
	chIn := make(chan FileInfo)
	chOut := make(chan fileResult)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		for _, f := range files {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case chIn <- f:
			}
		}
		return nil
	})

	workerCount := a.cfg.JobsNumber
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return a.worker(gCtx, chIn, chOut)
		})
	}

	g.Go(func() error {
		return a.collect(gCtx, chOut, len(files), stats)
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	return g.Wait()
}

func (a *Aggregator) worker(
	ctx context.Context,
	chIn <-chan FileInfo,
	chOut chan<- fileResult,
) error {
	for f := range chIn {
		res := a.processFile(f)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chOut <- res:
		}
	}
	return nil
}

// processFile reads one batch file, applies the row-level parameter filter
// and scores every surviving run under every configured trait. Each trait
// yields one (file, trait) unit for flush accounting.
func (a *Aggregator) processFile(f FileInfo) fileResult {
	res := fileResult{file: f}

	runs, err := ReadRuns(
		f.Path, a.engine.Comm.Species, a.cfg.Pipeline.SignifDigits,
	)
	if err != nil {
		res.err = err
		return res
	}

	eligible := make([]dissim.SimRun, 0, len(runs))
	for _, run := range runs {
		dest, ok := a.engine.Meta.DestSite(run.TurfID)
		if !ok {
			slog.Debug("Simulated turf unknown to metadata, skipping",
				"file", f.Path, "turfID", run.TurfID)
			res.skipped++
			continue
		}
		if !a.targets.HasSitePair(dest, run.D, run.M) {
			res.skipped++
			continue
		}
		if dissim.TotalAbundance(run.Abund) == 0 {
			slog.Debug("Simulated community is empty",
				"file", f.Path, "turfID", run.TurfID, "year", run.Year)
		}
		eligible = append(eligible, run)
	}

	for _, trait := range a.cfg.Pipeline.Traits {
		recs := make([]dissim.Record, 0, len(eligible))
		for _, run := range eligible {
			rec, ok, err := a.engine.ScoreSimulated(run, trait)
			if err != nil {
				res.err = err
				return res
			}
			if !ok {
				res.skipped++
				continue
			}
			recs = append(recs, rec)
			res.scored++
		}
		res.units = append(res.units, recs)
	}
	return res
}

// collect is the single consumer of worker output. It appends record
// batches to the buffer and collapses the buffer into the store after
// every FlushEvery processed (file, trait) units and at end of stream.
func (a *Aggregator) collect(
	ctx context.Context,
	chOut <-chan fileResult,
	total int,
	stats *pipeline.Stats,
) error {
	bar := newProgressBar(total, "corpus")
	defer bar.Finish()

	flushEvery := a.cfg.Pipeline.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 1
	}

	var buf []dissim.Record
	var units int

	for res := range chOut {
		bar.Increment()

		if res.err != nil {
			stats.FilesFailed++
			slog.Warn("Skipping corpus file",
				"file", res.file.Path, "error", res.err)
			continue
		}

		stats.RunsScored += res.scored
		stats.RunsSkipped += res.skipped

		for _, u := range res.units {
			buf = append(buf, u...)
			units++
			if units >= flushEvery {
				if err := a.flush(ctx, &buf); err != nil {
					return err
				}
				units = 0
				stats.Flushes++
			}
		}
	}

	if len(buf) > 0 {
		if err := a.flush(ctx, &buf); err != nil {
			return err
		}
		stats.Flushes++
	}
	return nil
}

func (a *Aggregator) flush(ctx context.Context, buf *[]dissim.Record) error {
	merged := dissim.MergeRecords(*buf)
	if err := a.store.Upsert(ctx, merged); err != nil {
		return err
	}
	*buf = (*buf)[:0]
	return nil
}

// baseline builds the pretreatment-year rows of the extended output. For
// every summary group the observed-vs-control distance at the group's
// earliest year is copied forward to the pretreatment year: no simulated
// drift has occurred yet at year zero.
func (a *Aggregator) baseline(summary []dissim.Record) ([]dissim.Record, error) {
	if len(summary) == 0 {
		return nil, nil
	}

	// Observed field distances per trait, keyed by turf.year.
	obs := make(map[string]map[string]float64)
	for _, r := range summary {
		if _, ok := obs[r.Trait]; ok {
			continue
		}
		recs, err := a.engine.ScoreObserved(r.Trait)
		if err != nil {
			return nil, err
		}
		byKey := make(map[string]float64, len(recs))
		for _, o := range recs {
			byKey[ecotab.Key(o.TurfID, o.Year)] = o.Dissim
		}
		obs[r.Trait] = byKey
	}

	type baseKey struct {
		trait  string
		turfID string
		m      float64
		d      int
	}
	earliest := make(map[baseKey]dissim.Record)
	for _, r := range summary {
		k := baseKey{trait: r.Trait, turfID: r.TurfID, m: r.M, d: r.D}
		cur, ok := earliest[k]
		if !ok || r.Year < cur.Year {
			earliest[k] = r
		}
	}

	var res []dissim.Record
	for k, r := range earliest {
		o, ok := obs[k.trait][ecotab.Key(k.turfID, r.Year)]
		if !ok || math.IsNaN(o) {
			continue
		}
		res = append(res, dissim.Record{
			Trait:  k.trait,
			TurfID: k.turfID,
			Year:   a.cfg.Pipeline.PretreatmentYear,
			M:      k.m,
			D:      k.d,
			Dissim: o,
			Reps:   r.Reps,
		})
	}
	dissim.SortRecords(res)
	return res, nil
}

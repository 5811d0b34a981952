// Package pipeline wires one batch run end to end: fan-out fetch, calendar
// alignment, derived factors, composite indices, regime classification,
// and artifact writes.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/macrorun/internal/align"
	"github.com/sawpanic/macrorun/internal/atomicio"
	"github.com/sawpanic/macrorun/internal/config"
	"github.com/sawpanic/macrorun/internal/dashboard"
	"github.com/sawpanic/macrorun/internal/factor"
	"github.com/sawpanic/macrorun/internal/metrics"
	"github.com/sawpanic/macrorun/internal/regime"
	"github.com/sawpanic/macrorun/internal/report"
	"github.com/sawpanic/macrorun/internal/series"
)

// Fetcher is the series store dependency; satisfied by fred.Client.
type Fetcher interface {
	Fetch(ctx context.Context, name, code string, start time.Time) (*series.Series, error)
}

// Runner executes batch runs against one configuration.
type Runner struct {
	cfg     *config.Config
	fetcher Fetcher
	metrics *metrics.Registry
	now     func() time.Time
}

// NewRunner builds a Runner. A nil metrics registry disables recording.
func NewRunner(cfg *config.Config, fetcher Fetcher, m *metrics.Registry) *Runner {
	return &Runner{cfg: cfg, fetcher: fetcher, metrics: m, now: time.Now}
}

// WithClock overrides the run's notion of "now"; tests pin the calendar
// with it.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Result carries everything one run produced.
type Result struct {
	RunID    string
	Frame    *align.Frame
	Regimes  []regime.Regime
	Rows     []dashboard.Row
	Snapshot report.Snapshot
	Skipped  []string
}

// Run executes one batch run. Per-series fetch failures degrade to missing
// columns; only configuration problems abort.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.now()
	runID := uuid.NewString()
	log.Info().Str("run_id", runID).Int("series", len(r.cfg.Series)).Msg("scan started")

	start, err := r.cfg.Start()
	if err != nil {
		return nil, err
	}

	raw, skipped := r.fetchAll(ctx, start)
	derived := r.deriveSeries(raw)

	frame, err := align.Align(raw, r.cfg.WindowDays, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.applySpreads(frame); err != nil {
		return nil, err
	}
	r.applyDiffs(frame)

	compositeNames := make([]string, 0, len(r.cfg.Composites))
	for _, comp := range r.cfg.Composites {
		col, err := factor.Composite(frame, comp, r.cfg.ZScore)
		if err != nil {
			return nil, err
		}
		if err := frame.Set(comp.Name, col); err != nil {
			return nil, err
		}
		compositeNames = append(compositeNames, comp.Name)
	}

	growth, inflation := regime.Proxies(frame, r.cfg.Proxy)
	if err := frame.Set("growth_proxy", growth); err != nil {
		return nil, err
	}
	if err := frame.Set("inflation_proxy", inflation); err != nil {
		return nil, err
	}
	regimes := regime.ClassifyAll(growth, inflation)

	rows := r.dashboardRows(raw, derived)
	snap := r.snapshot(runID, frame, regimes, compositeNames, skipped)

	if r.metrics != nil {
		r.metrics.ScansTotal.Inc()
		r.metrics.ScanDuration.Observe(r.now().Sub(started).Seconds())
	}
	log.Info().
		Str("run_id", runID).
		Int("columns", len(frame.Columns())).
		Int("skipped", len(skipped)).
		Str("regime", snap.Regime.String()).
		Msg("scan finished")

	return &Result{
		RunID:    runID,
		Frame:    frame,
		Regimes:  regimes,
		Rows:     rows,
		Snapshot: snap,
		Skipped:  skipped,
	}, nil
}

// fetchAll fans the series catalog out over a bounded worker pool. One
// series failing must not block or invalidate the others.
func (r *Runner) fetchAll(ctx context.Context, start time.Time) (*series.Store, []string) {
	type task struct{ name, code string }
	tasks := make([]task, 0, len(r.cfg.Series))
	for name, code := range r.cfg.Series {
		tasks = append(tasks, task{name, code})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].name < tasks[j].name })

	var (
		mu      sync.Mutex
		fetched []*series.Series
		skipped []string
	)
	sem := make(chan struct{}, r.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			began := time.Now()
			s, err := r.fetcher.Fetch(ctx, t.name, t.code, start)
			if r.metrics != nil {
				r.metrics.FetchDuration.Observe(time.Since(began).Seconds())
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("series", t.name).Str("code", t.code).Err(err).Msg("series skipped")
				skipped = append(skipped, t.name)
				if r.metrics != nil {
					r.metrics.FetchTotal.WithLabelValues(t.name, "error").Inc()
					r.metrics.SeriesSkipped.Inc()
				}
				return
			}
			fetched = append(fetched, s)
			if r.metrics != nil {
				r.metrics.FetchTotal.WithLabelValues(t.name, "ok").Inc()
			}
		}(t)
	}
	wg.Wait()

	sort.Strings(skipped)
	return series.NewStore(fetched), skipped
}

// deriveSeries builds the dashboard-level derived factors on publication
// dates, kept in a separate store from the raw series.
func (r *Runner) deriveSeries(raw *series.Store) *series.Store {
	out := make([]*series.Series, 0, len(r.cfg.Spreads))
	for _, sp := range r.cfg.Spreads {
		a, okA := raw.Get(sp.Minuend)
		b, okB := raw.Get(sp.Subtrahend)
		if !okA || !okB {
			log.Warn().Str("factor", sp.Name).Msg("derived factor skipped, input series missing")
			continue
		}
		out = append(out, series.Subtract(sp.Name, a, b))
	}
	return series.NewStore(out)
}

func (r *Runner) applySpreads(frame *align.Frame) error {
	for _, sp := range r.cfg.Spreads {
		col, err := factor.Spread(frame, sp.Minuend, sp.Subtrahend)
		if err != nil {
			// Input column absent after a degraded fetch; the spread is
			// simply not emitted.
			log.Warn().Str("factor", sp.Name).Err(err).Msg("frame spread skipped")
			continue
		}
		if err := frame.Set(sp.Name, col); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) applyDiffs(frame *align.Frame) {
	h := r.cfg.DiffHorizon
	for _, name := range r.cfg.DiffColumns {
		col, ok := frame.Column(name)
		if !ok {
			continue
		}
		d := factor.Diff(col, h)
		_ = frame.Set("d_"+name, d)
		_ = frame.Set("dd_"+name, factor.Diff(d, h))
	}
}

func (r *Runner) dashboardRows(raw, derived *series.Store) []dashboard.Row {
	changes := make(map[string]series.ChangeSet)
	collect := func(st *series.Store) {
		for _, name := range st.Names() {
			s, _ := st.Get(name)
			cs, err := series.Changes(s)
			if err != nil {
				continue
			}
			changes[name] = cs
		}
	}
	collect(raw)
	collect(derived)
	return dashboard.Build(changes, dashboard.NewPolicy(r.cfg.Status))
}

// snapshot picks the latest calendar day where every composite is defined
// and packages its readings with that day's regime.
func (r *Runner) snapshot(runID string, frame *align.Frame, regimes []regime.Regime, compositeNames []string, skipped []string) report.Snapshot {
	snap := report.Snapshot{
		RunID:       runID,
		GeneratedAt: r.now().UTC(),
		WindowDays:  r.cfg.WindowDays,
		Skipped:     skipped,
	}

	cols := make([][]float64, 0, len(compositeNames))
	for _, name := range compositeNames {
		col, ok := frame.Column(name)
		if !ok {
			return snap
		}
		cols = append(cols, col)
	}

	for i := frame.Rows() - 1; i >= 0; i-- {
		defined := true
		for _, col := range cols {
			if series.IsMissing(col[i]) {
				defined = false
				break
			}
		}
		if !defined {
			continue
		}
		snap.Seeded = true
		snap.AsOf = frame.Date(i)
		snap.Regime = regimes[i]
		for j, name := range compositeNames {
			snap.Composites = append(snap.Composites, report.CompositeValue{Name: name, Value: cols[j][i]})
		}
		break
	}
	return snap
}

// WriteArtifacts renders the run's outputs into the configured directory,
// each write-then-rename atomic.
func (r *Runner) WriteArtifacts(res *Result) error {
	dir := r.cfg.OutputDir

	header, records := report.DashboardTable(res.Rows)
	if err := atomicio.WriteCSV(filepath.Join(dir, "macro_dashboard_latest.csv"), header, records); err != nil {
		return fmt.Errorf("pipeline: dashboard artifact: %w", err)
	}

	header, records = report.FeatureTable(res.Frame, res.Regimes)
	if err := atomicio.WriteCSV(filepath.Join(dir, "macro_daily_features.csv"), header, records); err != nil {
		return fmt.Errorf("pipeline: feature artifact: %w", err)
	}

	if err := atomicio.WriteFile(filepath.Join(dir, "macro_report.md"), []byte(report.Markdown(res.Snapshot))); err != nil {
		return fmt.Errorf("pipeline: report artifact: %w", err)
	}

	log.Info().Str("run_id", res.RunID).Str("dir", dir).Msg("artifacts written")
	return nil
}

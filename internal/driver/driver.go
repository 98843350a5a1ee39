package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/filtering"
	"github.com/spigell/jobbot/internal/logger"
	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/notify"
	"github.com/spigell/jobbot/internal/report"
	"github.com/spigell/jobbot/internal/tracker"
)

const defaultFetchConcurrency = 4

// Tracker remembers submitted applications.
type Tracker interface {
	Record(ctx context.Context, job *matching.JobRecord, status tracker.Status, runID string) (*tracker.Application, error)
}

// Approver decides which of the filtered jobs to apply for. Returning an
// empty collection skips the apply step.
type Approver func(ctx context.Context, jobs *boards.Jobs) (*boards.Jobs, error)

type Options struct {
	// MaxApplications caps successful applications per cycle. Zero means no cap.
	MaxApplications int
	MinMatch        float64
	// Delay is the minimum pause between two applications.
	Delay            time.Duration
	ApplicationsLog  string
	FetchConcurrency int
}

type Driver struct {
	boards   []boards.Board
	pipeline *filtering.Pipeline
	tracker  Tracker
	notifier notify.Notifier
	profile  *matching.ResumeProfile
	limiter  *rate.Limiter
	opts     Options
	logger   *zap.Logger
	now      func() time.Time

	Approve Approver
}

func New(bs []boards.Board, pipeline *filtering.Pipeline, store Tracker, notifier notify.Notifier,
	profile *matching.ResumeProfile, opts Options, log *zap.Logger,
) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaultFetchConcurrency
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Driver{
		boards:   bs,
		pipeline: pipeline,
		tracker:  store,
		notifier: notifier,
		profile:  profile,
		limiter:  rate.NewLimiter(limit, 1),
		opts:     opts,
		logger:   log,
		now:      time.Now,
	}
}

// Platforms returns the names of the configured boards in search order.
func (d *Driver) Platforms() []string {
	names := make([]string, 0, len(d.boards))
	for _, b := range d.boards {
		names = append(names, b.Name())
	}
	return names
}

// Collect searches every board concurrently. A failing board is logged and
// contributes no jobs. Results keep board order and are de-duplicated by id.
func (d *Driver) Collect(ctx context.Context) (*boards.Jobs, error) {
	results := make([]*boards.Jobs, len(d.boards))

	var g errgroup.Group
	g.SetLimit(d.opts.FetchConcurrency)

	for i, b := range d.boards {
		g.Go(func() error {
			jobs, err := b.Search(ctx)
			if err != nil {
				d.logger.Warn("board search failed", zap.String(logger.FieldPlatform, b.Name()), zap.Error(err))
				return nil
			}
			d.logger.Info("board searched", zap.String(logger.FieldPlatform, b.Name()), zap.Int("count", jobs.Len()))
			results[i] = jobs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := boards.NewJobs()
	for _, jobs := range results {
		all.Append(jobs)
	}
	if dropped := all.Dedup(); len(dropped) > 0 {
		d.logger.Debug("dropped duplicate jobs", zap.Strings("ids", dropped))
	}

	return all, nil
}

// Apply walks jobs in score order and submits applications until
// MaxApplications succeed. Jobs already tracked are skipped.
func (d *Driver) Apply(ctx context.Context, runID string, jobs *boards.Jobs) ([]*matching.JobRecord, int, error) {
	if d.tracker == nil {
		return nil, 0, errors.New("tracker is required")
	}

	jobs.SortByScore()

	var (
		applied []*matching.JobRecord
		failed  int
	)

	for _, job := range jobs.Items {
		if d.opts.MaxApplications > 0 && len(applied) >= d.opts.MaxApplications {
			break
		}

		fields := append(logger.JobFields(job.Platform, job.ID, job.Company), logger.ScoreField(job.Score()))

		if err := d.limiter.Wait(ctx); err != nil {
			return applied, failed, err
		}

		if _, err := d.tracker.Record(ctx, job, tracker.StatusApplied, runID); err != nil {
			if errors.Is(err, tracker.ErrDuplicate) {
				d.logger.Info("already applied, skipping", fields...)
				continue
			}
			failed++
			d.logger.Error("recording application failed", append(fields, zap.Error(err))...)
			d.notifyError(fmt.Errorf("apply %s: %w", job.ID, err))
			continue
		}

		if err := d.appendLog(report.ApplicationEntry(job, d.now())); err != nil {
			d.logger.Warn("writing applications log failed", append(fields, zap.Error(err))...)
		}

		if err := d.notifier.ApplicationSent(job); err != nil {
			d.logger.Warn("notification failed", append(fields, zap.Error(err))...)
		}

		d.logger.Info("successfully applied to job", append(fields, zap.String("title", job.Title))...)
		applied = append(applied, job)
	}

	d.logger.Info("applications finished", zap.Int("applied", len(applied)), zap.Int("failed", failed))
	return applied, failed, nil
}

// RunCycle collects, filters and applies once, returning the run summary.
func (d *Driver) RunCycle(ctx context.Context) (*report.Summary, error) {
	runID := uuid.NewString()
	started := d.now()

	prev := d.logger
	d.logger = logger.WithRun(prev, runID)
	defer func() { d.logger = prev }()

	d.logger.Info("starting cycle", zap.Strings("platforms", d.Platforms()))

	found, err := d.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect jobs: %w", err)
	}

	if d.pipeline != nil {
		found, err = d.pipeline.RunFilters(ctx, found)
		if err != nil {
			return nil, fmt.Errorf("filter jobs: %w", err)
		}
	}
	found.SortByScore()

	d.logger.Info("jobs ready", zap.Int("count", found.Len()))

	candidates := found
	if d.Approve != nil && found.Len() > 0 {
		candidates, err = d.Approve(ctx, boards.NewJobs(found.Items...))
		if err != nil {
			return nil, fmt.Errorf("approve: %w", err)
		}
	}

	var (
		applied []*matching.JobRecord
		failed  int
	)
	if candidates != nil && candidates.Len() > 0 {
		applied, failed, err = d.Apply(ctx, runID, candidates)
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
	}

	summary := report.Build(report.Input{
		RunID:           runID,
		StartedAt:       started,
		FinishedAt:      d.now(),
		MinMatch:        d.opts.MinMatch,
		MaxApplications: d.opts.MaxApplications,
		Profile:         d.profile,
		Platforms:       d.Platforms(),
		Found:           found,
		Applied:         applied,
		Failed:          failed,
		ApplicationsLog: d.opts.ApplicationsLog,
	})

	if err := d.notifier.CycleSummary(summary); err != nil {
		d.logger.Warn("summary notification failed", zap.Error(err))
	}

	return summary, nil
}

// Watch runs a cycle immediately and then every interval until ctx is done.
// Failed cycles are logged and reported, the loop keeps going.
func (d *Driver) Watch(ctx context.Context, interval time.Duration, done func(*report.Summary)) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for cycle := 1; ; cycle++ {
		summary, err := d.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			d.logger.Error("cycle failed", zap.Int("cycle", cycle), zap.Error(err))
			d.notifyError(err)
		case done != nil:
			done(summary)
		}

		d.logger.Info("waiting for next cycle", zap.Int("cycle", cycle), zap.Duration("interval", interval))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Driver) appendLog(entry string) error {
	path := d.opts.ApplicationsLog
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *Driver) notifyError(err error) {
	if nerr := d.notifier.Error(err); nerr != nil {
		d.logger.Warn("error notification failed", zap.Error(nerr))
	}
}

package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/filtering"
	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/report"
	"github.com/spigell/jobbot/internal/tracker"
)

type fakeBoard struct {
	name string
	jobs []*matching.JobRecord
	err  error
}

func (b *fakeBoard) Name() string { return b.name }

func (b *fakeBoard) Search(context.Context) (*boards.Jobs, error) {
	if b.err != nil {
		return nil, b.err
	}
	return boards.NewJobs(b.jobs...), nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	sent      []string
	summaries []*report.Summary
	errs      []error
}

func (n *recordingNotifier) ApplicationSent(job *matching.JobRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, job.ID)
	return nil
}

func (n *recordingNotifier) CycleSummary(s *report.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, s)
	return nil
}

func (n *recordingNotifier) Error(err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
	return nil
}

type failingTracker struct{}

func (failingTracker) Record(context.Context, *matching.JobRecord, tracker.Status, string) (*tracker.Application, error) {
	return nil, errors.New("disk full")
}

func scored(id, platform string, score float64) *matching.JobRecord {
	return &matching.JobRecord{
		ID:       id,
		Platform: platform,
		Company:  "Company " + id,
		Title:    "DevOps Engineer",
		URL:      "https://example.com/" + id,
		Match:    &matching.MatchResult{Overall: score},
	}
}

func openStore(t *testing.T) *tracker.Store {
	t.Helper()
	store, err := tracker.Open(context.Background(), filepath.Join(t.TempDir(), "applications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func jobIDs(jobs []*matching.JobRecord) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestCollectMergesInBoardOrder(t *testing.T) {
	bs := []boards.Board{
		&fakeBoard{name: "DICE", jobs: []*matching.JobRecord{scored("dice_001", "DICE", 0), scored("dice_002", "DICE", 0)}},
		&fakeBoard{name: "RemoteOK", err: errors.New("503 service unavailable")},
		&fakeBoard{name: "Indeed", jobs: []*matching.JobRecord{scored("indeed_001", "Indeed", 0), scored("dice_001", "DICE", 0)}},
	}
	d := New(bs, nil, nil, nil, nil, Options{}, zap.NewNop())

	jobs, err := d.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dice_001", "dice_002", "indeed_001"}, jobIDs(jobs.Items))
	assert.Equal(t, []string{"DICE", "RemoteOK", "Indeed"}, d.Platforms())
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New([]boards.Board{&fakeBoard{name: "DICE"}}, nil, nil, nil, nil, Options{}, nil)
	_, err := d.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestApplyRespectsLimitAndHistory(t *testing.T) {
	store := openStore(t)
	notifier := &recordingNotifier{}
	logPath := filepath.Join(t.TempDir(), "logs", "applications.log")

	d := New(nil, nil, store, notifier, nil, Options{MaxApplications: 2, ApplicationsLog: logPath}, zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }

	seen := scored("turing_001", "Turing", 90)
	_, err := store.Record(context.Background(), seen, tracker.StatusApplied, "earlier")
	require.NoError(t, err)

	jobs := boards.NewJobs(
		scored("dice_001", "DICE", 60),
		seen,
		scored("indeed_001", "Indeed", 75),
		scored("wellfound_001", "Wellfound", 80),
	)

	applied, failed, err := d.Apply(context.Background(), "run-1", jobs)
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []string{"wellfound_001", "indeed_001"}, jobIDs(applied))
	assert.Equal(t, []string{"wellfound_001", "indeed_001"}, notifier.sent)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "APPLIED WITH RESUME MATCHING"))
	assert.Contains(t, string(data), "2026-10-01 12:00:00")

	apps, err := store.List(context.Background(), tracker.StatusApplied, 0)
	require.NoError(t, err)
	assert.Len(t, apps, 3)
}

func TestApplyRetriesFailedApplication(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	d := New(nil, nil, store, &recordingNotifier{}, nil, Options{ApplicationsLog: filepath.Join(t.TempDir(), "applications.log")}, zap.NewNop())

	job := scored("remoteok_001", "RemoteOK", 70)
	_, err := store.Record(ctx, job, tracker.StatusFailed, "earlier")
	require.NoError(t, err)

	applied, failed, err := d.Apply(ctx, "run-2", boards.NewJobs(job))
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []string{"remoteok_001"}, jobIDs(applied))

	ok, err := store.IsApplied(ctx, job)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyCountsFailures(t *testing.T) {
	notifier := &recordingNotifier{}
	d := New(nil, nil, failingTracker{}, notifier, nil, Options{}, zap.NewNop())

	applied, failed, err := d.Apply(context.Background(), "run", boards.NewJobs(scored("a", "DICE", 50), scored("b", "DICE", 40)))
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, 2, failed)
	assert.Len(t, notifier.errs, 2)
}

func TestApplyWithoutTracker(t *testing.T) {
	d := New(nil, nil, nil, nil, nil, Options{}, nil)
	_, _, err := d.Apply(context.Background(), "run", boards.NewJobs())
	require.Error(t, err)
}

func newPipeline(t *testing.T, profile *matching.ResumeProfile, minScore float64) *filtering.Pipeline {
	t.Helper()
	scorer, err := matching.NewScorer(matching.DefaultVocabulary(), matching.DefaultWeights())
	require.NoError(t, err)
	return filtering.New([]filtering.Filter{
		filtering.NewMatchScore(scorer, profile, minScore, nil),
	}, zap.NewNop())
}

func TestRunCycle(t *testing.T) {
	profile := matching.NewResumeProfile([]string{"python", "aws", "docker"}, []string{"aws", "docker"}, 5)
	good := &matching.JobRecord{
		ID: "dice_001", Platform: "DICE", Company: "TechCorp", Title: "Cloud Engineer",
		Description: "Looking for Python and AWS engineer, 3+ years required",
		URL:         "https://dice.com/job/dice_001",
	}
	bs := []boards.Board{&fakeBoard{name: "DICE", jobs: []*matching.JobRecord{good}}}

	store := openStore(t)
	notifier := &recordingNotifier{}
	d := New(bs, newPipeline(t, profile, 50), store, notifier, profile, Options{MinMatch: 50, MaxApplications: 5}, zap.NewNop())

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.JobsFound)
	require.Len(t, summary.Applied, 1)
	assert.Equal(t, "dice_001", summary.Applied[0].ID)
	assert.GreaterOrEqual(t, summary.Applied[0].Score(), 50.0)
	assert.Len(t, notifier.summaries, 1)

	apps, err := store.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, summary.RunID, apps[0].RunID)

	// second cycle finds the same job but does not apply twice
	summary, err = d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Applied)
}

func TestRunCycleApprover(t *testing.T) {
	bs := []boards.Board{&fakeBoard{name: "DICE", jobs: []*matching.JobRecord{scored("a", "DICE", 70), scored("b", "DICE", 80)}}}
	store := openStore(t)
	d := New(bs, nil, store, nil, nil, Options{}, zap.NewNop())

	var offered []string
	d.Approve = func(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, error) {
		offered = jobIDs(jobs.Items)
		return boards.NewJobs(jobs.FindByID("a")), nil
	}

	summary, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, offered)
	assert.Equal(t, []string{"a"}, jobIDs(summary.Applied))
	assert.Equal(t, 2, summary.JobsFound)

	d.Approve = func(context.Context, *boards.Jobs) (*boards.Jobs, error) { return nil, nil }
	summary, err = d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Applied)
}

func TestWatchStopsOnCancel(t *testing.T) {
	bs := []boards.Board{&fakeBoard{name: "DICE"}}
	d := New(bs, nil, openStore(t), nil, nil, Options{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cycles := 0
	err := d.Watch(ctx, time.Millisecond, func(*report.Summary) {
		cycles++
		if cycles == 2 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cycles)

	require.Error(t, d.Watch(context.Background(), 0, nil))
}

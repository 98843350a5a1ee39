package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/matching"
)

const forceFlagSetMsg = "force flag is set"

// AppliedHistory answers whether a job was applied for in an earlier run.
type AppliedHistory interface {
	IsApplied(ctx context.Context, job *matching.JobRecord) (bool, error)
}

type appliedHistoryFilter struct {
	toggle
	history AppliedHistory
	ignore  bool
	logger  *zap.Logger
}

// NewAppliedHistory creates a filter that removes jobs already present in
// the application history. ignore keeps them.
func NewAppliedHistory(history AppliedHistory, ignore bool, logger *zap.Logger) Filter {
	return &appliedHistoryFilter{history: history, ignore: ignore, logger: nopIfNil(logger)}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate() error {
	if !f.ignore && f.history == nil {
		return fmt.Errorf("application history is required")
	}
	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	if f.ignore {
		f.logger.Info("ignoring already applied jobs", zap.String("reason", forceFlagSetMsg))
		return jobs, unchanged(jobs), nil
	}

	initial := jobs.Len()

	var lookupErr error
	excluded := jobs.Keep(func(job *matching.JobRecord) bool {
		if lookupErr != nil {
			return true
		}
		applied, err := f.history.IsApplied(ctx, job)
		if err != nil {
			lookupErr = err
			return true
		}
		return !applied
	})
	if lookupErr != nil {
		return jobs, Step{}, fmt.Errorf("check application history: %w", lookupErr)
	}

	if len(excluded) > 0 {
		f.logger.Info("excluding jobs based on application history",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *appliedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_applied": strconv.FormatBool(!f.ignore),
	}
	reason := f.reason
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason, Details: details}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

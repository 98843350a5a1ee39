package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
)

type excludeFileFilter struct {
	toggle
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes jobs listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path), logger: nopIfNil(logger)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	if f.path == "" {
		return jobs, unchanged(jobs), nil
	}

	excluded, err := boards.GetExcludedJobsFromFile(f.path)
	if err != nil {
		return jobs, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	initial := jobs.Len()
	removed := jobs.Exclude(boards.JobIDField, excluded.JobIDs())
	if len(removed) > 0 {
		f.logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

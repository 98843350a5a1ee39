package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/matching"
)

type minSalaryFilter struct {
	toggle
	min    int
	logger *zap.Logger
}

// NewMinSalary creates a filter that drops jobs whose advertised salary tops
// out below min. Jobs without salary information are kept.
func NewMinSalary(min int, logger *zap.Logger) Filter {
	return &minSalaryFilter{min: min, logger: nopIfNil(logger)}
}

func (f *minSalaryFilter) Name() string { return "min_salary" }

func (f *minSalaryFilter) Validate() error {
	if f.min < 0 {
		return fmt.Errorf("minimum salary must not be negative, got %d", f.min)
	}
	return nil
}

func (f *minSalaryFilter) Apply(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	if f.min == 0 {
		return jobs, unchanged(jobs), nil
	}

	initial := jobs.Len()
	dropped := jobs.Keep(func(job *matching.JobRecord) bool {
		top := max(job.SalaryMin, job.SalaryMax)
		return top == 0 || top >= f.min
	})
	if len(dropped) > 0 {
		f.logger.Info("excluding jobs below minimum salary",
			zap.Int("min_salary", f.min),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *minSalaryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_salary": strconv.Itoa(f.min)},
	}
}

package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
)

type companiesFilter struct {
	toggle
	companies []string
	logger    *zap.Logger
}

// NewCompanies creates a filter that removes jobs posted by the listed companies.
func NewCompanies(companies []string, logger *zap.Logger) Filter {
	return &companiesFilter{companies: companies, logger: nopIfNil(logger)}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	if len(f.companies) == 0 {
		return jobs, unchanged(jobs), nil
	}

	initial := jobs.Len()
	excluded := jobs.Exclude(boards.JobCompanyField, f.companies)
	if len(excluded) > 0 {
		f.logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

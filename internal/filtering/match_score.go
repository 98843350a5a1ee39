package filtering

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/logger"
	"github.com/spigell/jobbot/internal/matching"
)

type matchScoreFilter struct {
	toggle
	scorer   *matching.Scorer
	profile  *matching.ResumeProfile
	minScore float64
	logger   *zap.Logger
}

// NewMatchScore creates a filter that scores every job against the profile
// and drops those below minScore.
func NewMatchScore(scorer *matching.Scorer, profile *matching.ResumeProfile, minScore float64, log *zap.Logger) Filter {
	return &matchScoreFilter{scorer: scorer, profile: profile, minScore: minScore, logger: nopIfNil(log)}
}

func (f *matchScoreFilter) Name() string { return "match_score" }

func (f *matchScoreFilter) Validate() error {
	if f.scorer == nil {
		return errors.New("scorer is required")
	}
	if f.profile == nil {
		return errors.New("resume profile is required")
	}
	if f.minScore < 0 || f.minScore > 100 {
		return fmt.Errorf("minimum match score %v is out of [0,100]", f.minScore)
	}
	return nil
}

func (f *matchScoreFilter) Apply(_ context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	initial := jobs.Len()

	for _, job := range jobs.Items {
		if err := f.scorer.Attach(f.profile, job); err != nil {
			return jobs, Step{}, fmt.Errorf("score %s: %w", job.ID, err)
		}
		f.logger.Debug("job scored", append(logger.JobFields(job.Platform, job.ID, job.Company),
			logger.ScoreField(job.Score()),
		)...)
	}

	dropped := jobs.Keep(func(job *matching.JobRecord) bool {
		return job.Score() >= f.minScore
	})
	if len(dropped) > 0 {
		f.logger.Info("excluding jobs below minimum match",
			zap.Float64("min_match", f.minScore),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *matchScoreFilter) Status() Status {
	details := map[string]string{
		"min_match": fmt.Sprintf("%.1f", f.minScore),
	}
	if f.scorer != nil {
		w := f.scorer.Weights()
		details["weights"] = fmt.Sprintf("skills=%.2f technology=%.2f experience=%.2f education=%.2f",
			w.Skills, w.Technology, w.Experience, w.Education)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/ai"
	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/logger"
	"github.com/spigell/jobbot/internal/matching"
)

// AIFitOptions configures the AI evaluation step.
type AIFitOptions struct {
	Provider        string
	Model           string
	MinimumFitScore float64
	// ExcludeFile, when set, receives the jobs rejected by the model so later
	// runs skip them without another request.
	ExcludeFile string
}

type aiFitFilter struct {
	toggle
	matcher ai.Matcher
	resume  *ai.Resume
	opts    AIFitOptions
	logger  *zap.Logger
}

// NewAIFit creates the AI-based filtering step. A nil matcher disables it.
func NewAIFit(matcher ai.Matcher, resume *ai.Resume, opts AIFitOptions, log *zap.Logger) Filter {
	f := &aiFitFilter{
		matcher: matcher,
		resume:  resume,
		opts:    opts,
		logger:  logger.WithAI(log, opts.Provider, opts.Model),
	}
	if matcher == nil {
		f.Disable("ai matcher is not configured")
	}
	return f
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Validate() error {
	if f.resume == nil || (f.resume.Text == "" && f.resume.Profile == nil) {
		return errors.New("resume is required for AI evaluation")
	}
	if f.opts.MinimumFitScore < 0 || f.opts.MinimumFitScore > 1 {
		return fmt.Errorf("minimum fit score %v is out of [0,1]", f.opts.MinimumFitScore)
	}
	return nil
}

// Apply asks the model about every job. Rejected jobs are dropped; jobs the
// model could not evaluate are kept with the error attached.
func (f *aiFitFilter) Apply(ctx context.Context, jobs *boards.Jobs) (*boards.Jobs, Step, error) {
	initial := jobs.Len()
	rejected := &boards.Jobs{}
	approved := make([]*matching.JobRecord, 0, initial)

	for _, job := range jobs.Items {
		if err := ctx.Err(); err != nil {
			return jobs, Step{}, err
		}

		fields := logger.JobFields(job.Platform, job.ID, job.Company)

		assessment, err := f.matcher.Evaluate(ctx, f.resume, job)
		if err != nil {
			f.logger.Warn("AI evaluation failed", append(fields, zap.Error(err))...)
			job.AI = &matching.AIAssessment{Error: err.Error()}
			approved = append(approved, job)
			continue
		}

		job.AI = assessment.Record()

		if !assessment.Fit {
			f.logger.Info("job rejected by AI provider", append(fields,
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)...)
			rejected.Items = append(rejected.Items, job)
			continue
		}

		f.logger.Info("job approved by AI", append(fields, zap.Float64("ai_score", assessment.Score))...)
		approved = append(approved, job)
	}

	jobs.Items = approved

	if err := f.rememberRejected(rejected); err != nil {
		return jobs, Step{}, err
	}

	if initial != len(approved) {
		f.logger.Info("AI filtering completed",
			zap.Int("initial_jobs", initial),
			zap.Int("approved_jobs", len(approved)),
		)
	}

	return jobs, stepOf(initial, jobs), nil
}

func (f *aiFitFilter) rememberRejected(rejected *boards.Jobs) error {
	if f.opts.ExcludeFile == "" || rejected.Len() == 0 {
		return nil
	}

	excluded, err := boards.GetExcludedJobsFromFile(f.opts.ExcludeFile)
	if err != nil {
		return fmt.Errorf("read exclude file: %w", err)
	}

	for _, job := range rejected.Items {
		excluded.Append(boards.NewJobs(job).ToExcluded(boards.ExcludeActorAI, job.AI.Reason))
	}

	if err := excluded.ToFile(f.opts.ExcludeFile); err != nil {
		return fmt.Errorf("write exclude file: %w", err)
	}
	return nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{
		"minimum_fit_score": fmt.Sprintf("%.2f", f.opts.MinimumFitScore),
		"remember_rejected": strconv.FormatBool(f.opts.ExcludeFile != ""),
	}
	if f.opts.Provider != "" {
		details["provider"] = f.opts.Provider
	}
	if f.opts.Model != "" {
		details["model"] = f.opts.Model
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

package ai

import (
	"context"

	"github.com/spigell/jobbot/internal/matching"
)

// Resume is what the model sees of the candidate.
type Resume struct {
	Text    string
	Profile *matching.ResumeProfile
}

type FitAssessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

// Record converts the assessment into the form stored on job records.
func (a *FitAssessment) Record() *matching.AIAssessment {
	if a == nil {
		return nil
	}
	return &matching.AIAssessment{
		Fit:     a.Fit,
		Score:   a.Score,
		Reason:  a.Reason,
		Message: a.Message,
		Raw:     a.Raw,
	}
}

type Matcher interface {
	Evaluate(ctx context.Context, resume *Resume, job *matching.JobRecord) (*FitAssessment, error)
}

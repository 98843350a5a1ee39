package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitAssessmentRecord(t *testing.T) {
	var empty *FitAssessment
	assert.Nil(t, empty.Record())

	record := (&FitAssessment{Fit: true, Score: 0.7, Reason: "good", Message: "hi", Raw: "{}"}).Record()
	assert.True(t, record.Fit)
	assert.Equal(t, 0.7, record.Score)
	assert.Equal(t, "good", record.Reason)
	assert.Equal(t, "hi", record.Message)
	assert.Equal(t, "{}", record.Raw)
	assert.Empty(t, record.Error)
}

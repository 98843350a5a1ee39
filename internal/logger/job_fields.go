package logger

import (
	"strconv"

	"go.uber.org/zap"
)

const (
	FieldJobID    = "job_id"
	FieldPlatform = "platform"
	FieldCompany  = "company"
	FieldScore    = "match_score"
	FieldRunID    = "run_id"
)

// JobFields describes a job listing in log entries. Empty values are skipped.
func JobFields(platform, id, company string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPlatform, Value: platform},
		StringField{Key: FieldJobID, Value: id},
		StringField{Key: FieldCompany, Value: company},
	)
}

// ScoreField rounds the score to two decimals to keep console output short.
func ScoreField(score float64) zap.Field {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(score, 'f', 2, 64), 64)
	return zap.Float64(FieldScore, rounded)
}

// WithRun attaches the run identifier to every entry of the returned logger.
func WithRun(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...)
}

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/ai"
	"github.com/spigell/jobbot/internal/logger"
	"github.com/spigell/jobbot/internal/matching"
	"github.com/spigell/jobbot/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed system.md
var systemPrompt string

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxOverrideRunes        = 300
	maxResumeTextRunes      = 12000
	defaultTone             = "Friendly"
	nonePlaceholder         = "none"
)

// PromptOverrides are user-supplied additions to the evaluation prompt.
type PromptOverrides struct {
	ExtraCriteria     string `mapstructure:"extra-criteria"`
	DealBreakers      string `mapstructure:"deal-breakers"`
	CustomKeywords    string `mapstructure:"custom-keywords"`
	Tone              string `mapstructure:"tone"`
	RegionConstraints string `mapstructure:"region-constraints"`
	UserInstructions  string `mapstructure:"user-instructions"`
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, log *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger.WithAI(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) SetPromptOverrides(overrides PromptOverrides) {
	m.overrides = overrides
}

func (m *Matcher) Evaluate(ctx context.Context, resume *ai.Resume, job *matching.JobRecord) (*ai.FitAssessment, error) {
	if resume == nil {
		return nil, fmt.Errorf("resume is required")
	}
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	resumeJSON, err := json.MarshalIndent(resumePayload(resume), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resume payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(jobPayload(job), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := m.buildPrompt(string(resumeJSON), string(jobJSON))
	fields := logger.JobFields(job.Platform, job.ID, job.Company)

	m.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)...)

	raw, err := m.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)...)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold", append(fields,
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)...)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func resumePayload(resume *ai.Resume) map[string]any {
	payload := map[string]any{
		"text": utils.TruncateForLog(resume.Text, maxResumeTextRunes),
	}
	if p := resume.Profile; p != nil {
		payload["skills"] = p.SkillList()
		payload["technologies"] = p.TechnologyList()
		payload["experience_years"] = p.ExperienceYears
		payload["education"] = p.Education
	}
	return payload
}

func jobPayload(job *matching.JobRecord) map[string]any {
	payload := map[string]any{
		"id":          job.ID,
		"platform":    job.Platform,
		"title":       job.Title,
		"company":     job.Company,
		"description": job.Description,
		"location":    job.Location,
		"tags":        job.Tags,
	}
	if job.SalaryMin > 0 || job.SalaryMax > 0 {
		payload["salary_min"] = job.SalaryMin
		payload["salary_max"] = job.SalaryMax
	}
	if job.Match != nil {
		payload["keyword_match"] = job.Match.Overall
	}
	return payload
}

func (m *Matcher) buildPrompt(resumeJSON, jobJSON string) string {
	o := m.overrides

	tone := singleLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}

	replacer := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", orNone(singleLine(o.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(singleLine(o.DealBreakers)),
		"{{CUSTOM_KEYWORDS}}", orNone(singleLine(o.CustomKeywords)),
		"{{TONE}}", tone,
		"{{REGION_CONSTRAINTS}}", orNone(singleLine(o.RegionConstraints)),
		"{{USER_INSTRUCTIONS}}", userInstructionsBlock(o.UserInstructions),
		"{{RESUME_JSON}}", resumeJSON,
		"{{JOB_JSON}}", jobJSON,
	)

	return replacer.Replace(promptTemplate)
}

// neutralizeBrackets keeps user text from opening new prompt sections.
func neutralizeBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func singleLine(s string) string {
	s = utils.OneLine(neutralizeBrackets(s))
	return truncateRunes(s, maxOverrideRunes)
}

// userInstructionsBlock renders free-form instructions as an indented list,
// one item per non-empty line, capped at maxUserInstructionRunes.
func userInstructionsBlock(raw string) string {
	var lines []string
	budget := maxUserInstructionRunes

	for _, line := range strings.Split(raw, "\n") {
		line = utils.OneLine(neutralizeBrackets(line))
		if line == "" || budget <= 0 {
			continue
		}
		line = truncateRunes(line, budget)
		budget -= utf8.RuneCountInString(line)
		lines = append(lines, "  - "+line)
	}

	if len(lines) == 0 {
		return "  - " + nonePlaceholder
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orNone(s string) string {
	if s == "" {
		return nonePlaceholder
	}
	return s
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

// extractJSON strips markdown fences and any prose around the object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

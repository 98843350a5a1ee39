package matching

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

const DefaultEducationPartialCredit = 50.0

// First stated non-zero requirement wins; "3-5 years" counts as 3.
var jobYearsRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:\s*(?:-|–|to)\s*\d{1,2})?\s*\+?\s*(?:years?|yrs?)\b`)

type Option func(*Scorer)

// WithEducationPartialCredit sets the education score used when the listing
// asks for a qualification the résumé does not mention.
func WithEducationPartialCredit(v float64) Option {
	return func(s *Scorer) {
		s.educationPartial = v
	}
}

// Scorer compares résumé profiles with job records. It holds only
// immutable configuration and may be shared between goroutines.
type Scorer struct {
	vocab            *compiledVocabulary
	weights          Weights
	educationPartial float64
}

func NewScorer(vocab Vocabulary, weights Weights, opts ...Option) (*Scorer, error) {
	return newScorer(vocab.compile(), weights, opts...)
}

func newScorer(vocab *compiledVocabulary, weights Weights, opts ...Option) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		vocab:            vocab,
		weights:          weights,
		educationPartial: DefaultEducationPartialCredit,
	}
	for _, opt := range opts {
		opt(s)
	}

	if math.IsNaN(s.educationPartial) || s.educationPartial < 0 || s.educationPartial > 100 {
		return nil, fmt.Errorf("education partial credit %v is out of [0,100]", s.educationPartial)
	}

	return s, nil
}

// ScoreJob scores a job with the built-in vocabulary. Nil weights mean the
// default 40/30/20/10 split.
func ScoreJob(profile *ResumeProfile, job *JobRecord, weights *Weights) (*MatchResult, error) {
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}

	s, err := newScorer(defaultCompiled(), w)
	if err != nil {
		return nil, err
	}

	return s.Score(profile, job)
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

func (s *Scorer) Score(profile *ResumeProfile, job *JobRecord) (*MatchResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: resume profile is nil", ErrInvalidInput)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job record is nil", ErrInvalidInput)
	}

	result := &MatchResult{
		Components: make(map[Category]float64, len(Categories)),
		Matched:    make(map[Category][]string, len(Categories)),
		Missing:    make(map[Category][]string, len(Categories)),
	}

	text := job.Description

	s.keywordComponent(result, CategorySkills, text, s.vocab.skills, profile.skillSlice)
	s.keywordComponent(result, CategoryTechnology, text, s.vocab.technologies, func() []string {
		return s.profileTechnologies(profile)
	})
	s.experienceComponent(result, text, profile.ExperienceYears)
	s.educationComponent(result, text, profile.Education)

	overall := s.weights.Skills*result.Components[CategorySkills] +
		s.weights.Technology*result.Components[CategoryTechnology] +
		s.weights.Experience*result.Components[CategoryExperience] +
		s.weights.Education*result.Components[CategoryEducation]
	result.Overall = math.Max(0, math.Min(100, overall))

	return result, nil
}

// Attach scores the job and stores the result on it.
func (s *Scorer) Attach(profile *ResumeProfile, job *JobRecord) error {
	result, err := s.Score(profile, job)
	if err != nil {
		return err
	}
	job.Match = result
	return nil
}

// keywordComponent scores the share of mentioned terms the profile covers.
// Mentioned terms are vocabulary hits plus any profile term found in text.
func (s *Scorer) keywordComponent(result *MatchResult, c Category, text string, vocab []term, own func() []string) {
	required := make(map[string]struct{})
	for _, t := range vocab {
		if t.re.MatchString(text) {
			required[t.name] = struct{}{}
		}
	}

	matched := []string{}
	if text != "" {
		for _, name := range own() {
			if _, ok := required[name]; ok || containsWord(text, name) {
				required[name] = struct{}{}
				matched = append(matched, name)
			}
		}
	}
	sort.Strings(matched)

	matchedSet := make(map[string]struct{}, len(matched))
	for _, name := range matched {
		matchedSet[name] = struct{}{}
	}
	missing := []string{}
	for name := range required {
		if _, ok := matchedSet[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	denominator := len(required)
	if denominator == 0 {
		denominator = 1
	}

	result.Components[c] = math.Min(100, 100*float64(len(matched))/float64(denominator))
	result.Matched[c] = matched
	result.Missing[c] = missing
}

func (s *Scorer) experienceComponent(result *MatchResult, text string, years int) {
	result.Matched[CategoryExperience] = []string{}
	result.Missing[CategoryExperience] = []string{}

	required := 0
	for _, m := range jobYearsRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			required = n
			break
		}
	}

	if required <= 0 {
		result.Components[CategoryExperience] = 100
		return
	}

	label := strconv.Itoa(required) + "+ years"
	if years >= required {
		result.Components[CategoryExperience] = 100
		result.Matched[CategoryExperience] = []string{label}
		return
	}

	result.Components[CategoryExperience] = math.Max(0, math.Min(100, 100*float64(years)/float64(required)))
	result.Missing[CategoryExperience] = []string{label}
}

func (s *Scorer) educationComponent(result *MatchResult, text string, entries []string) {
	matched := []string{}
	missing := []string{}

	for _, t := range s.vocab.education {
		if !t.listing.MatchString(text) {
			continue
		}
		if educationSatisfied(t, entries) {
			matched = append(matched, t.name)
		} else {
			missing = append(missing, t.name)
		}
	}

	result.Matched[CategoryEducation] = matched
	result.Missing[CategoryEducation] = missing

	result.Components[CategoryEducation] = 100
	if len(matched) == 0 && len(missing) > 0 {
		result.Components[CategoryEducation] = s.educationPartial
	}
}

// educationSatisfied reports whether any entry mentions the keyword. A bare
// "degree" requirement is met by any named degree.
func educationSatisfied(t term, entries []string) bool {
	for _, entry := range entries {
		if t.re.MatchString(entry) {
			return true
		}
		if t.name != "degree" {
			continue
		}
		for _, kw := range degreeKeywords {
			if containsWord(entry, kw) {
				return true
			}
		}
	}
	return false
}

func (p *ResumeProfile) skillSlice() []string {
	if p.Skills == nil {
		return nil
	}
	return p.Skills.ToSlice()
}

// profileTechnologies is the profile's technologies plus any of its skills
// the vocabulary classifies as a technology.
func (s *Scorer) profileTechnologies(p *ResumeProfile) []string {
	techs := make(map[string]struct{})
	if p.Technologies != nil {
		for _, name := range p.Technologies.ToSlice() {
			techs[name] = struct{}{}
		}
	}
	for _, name := range p.skillSlice() {
		if s.vocab.isTechnology(name) {
			techs[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(techs))
	for name := range techs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

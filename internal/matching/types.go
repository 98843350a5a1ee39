package matching

import (
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrInvalidInput is returned when a required argument is missing.
var ErrInvalidInput = errors.New("invalid input")

type Category string

const (
	CategorySkills     Category = "skills"
	CategoryTechnology Category = "technology"
	CategoryExperience Category = "experience"
	CategoryEducation  Category = "education"
)

// Categories lists score components in report order.
var Categories = []Category{CategorySkills, CategoryTechnology, CategoryExperience, CategoryEducation}

type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// ResumeProfile holds the facts extracted from a résumé. It is built once and
// must not be modified afterwards.
type ResumeProfile struct {
	Skills          mapset.Set[string]
	Technologies    mapset.Set[string]
	ExperienceYears int
	Education       []string
	Contact         Contact
}

// NewResumeProfile builds a profile from explicit values. Skill names are
// lower-cased.
func NewResumeProfile(skills, technologies []string, years int, education ...string) *ResumeProfile {
	return &ResumeProfile{
		Skills:          lowerSet(skills),
		Technologies:    lowerSet(technologies),
		ExperienceYears: years,
		Education:       education,
	}
}

func (p *ResumeProfile) SkillList() []string {
	return sortedSlice(p.Skills)
}

func (p *ResumeProfile) TechnologyList() []string {
	return sortedSlice(p.Technologies)
}

// AIAssessment is the second opinion attached by the AI fit filter.
type AIAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"raw,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// JobRecord is a single listing from a board or a template.
type JobRecord struct {
	ID          string        `json:"id" yaml:"id"`
	Platform    string        `json:"platform" yaml:"platform"`
	Title       string        `json:"title" yaml:"title"`
	Company     string        `json:"company" yaml:"company"`
	Description string        `json:"description,omitempty" yaml:"description"`
	Location    string        `json:"location,omitempty" yaml:"location"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags"`
	SalaryMin   int           `json:"salary_min,omitempty" yaml:"salary_min"`
	SalaryMax   int           `json:"salary_max,omitempty" yaml:"salary_max"`
	URL         string        `json:"url,omitempty" yaml:"url"`
	ApplyURL    string        `json:"apply_url,omitempty" yaml:"apply_url"`
	PostedAt    string        `json:"posted_at,omitempty" yaml:"posted_at"`
	Match       *MatchResult  `json:"match,omitempty" yaml:"-"`
	AI          *AIAssessment `json:"ai,omitempty" yaml:"-"`
}

// Score returns the attached overall score or 0 when the job was not scored.
func (j *JobRecord) Score() float64 {
	if j == nil || j.Match == nil {
		return 0
	}
	return j.Match.Overall
}

type MatchResult struct {
	Overall    float64               `json:"overall"`
	Components map[Category]float64  `json:"components"`
	Matched    map[Category][]string `json:"matched,omitempty"`
	Missing    map[Category][]string `json:"missing,omitempty"`
}

func (m *MatchResult) Component(c Category) float64 {
	if m == nil {
		return 0
	}
	return m.Components[c]
}

func lowerSet(items []string) mapset.Set[string] {
	set := mapset.NewSet[string]()
	for _, item := range items {
		if item = normalizeTerm(item); item != "" {
			set.Add(item)
		}
	}
	return set
}

func sortedSlice(set mapset.Set[string]) []string {
	if set == nil {
		return []string{}
	}
	items := set.ToSlice()
	sort.Strings(items)
	return items
}

package report

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spigell/jobbot/internal/boards"
	"github.com/spigell/jobbot/internal/matching"
)

const (
	rule      = "=================================================="
	topSkills = 10
)

// Input is everything a run knows when it finishes.
type Input struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	MinMatch        float64
	MaxApplications int
	Profile         *matching.ResumeProfile
	// Platforms lists every board searched, including those that returned nothing.
	Platforms       []string
	Found           *boards.Jobs
	Applied         []*matching.JobRecord
	Failed          int
	ApplicationsLog string
}

type PlatformCount struct {
	Name string
	Jobs int
}

type Summary struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	MinMatch        float64
	MaxApplications int

	Skills          int
	ExperienceYears int
	Education       int
	TopSkills       []string

	Platforms []PlatformCount
	JobsFound int

	Applied      []*matching.JobRecord
	Failed       int
	AverageMatch float64
	HighestMatch float64
	LowestMatch  float64

	ApplicationsLog string
}

func Build(in Input) *Summary {
	s := &Summary{
		RunID:           in.RunID,
		StartedAt:       in.StartedAt,
		FinishedAt:      in.FinishedAt,
		MinMatch:        in.MinMatch,
		MaxApplications: in.MaxApplications,
		Applied:         in.Applied,
		Failed:          in.Failed,
		ApplicationsLog: in.ApplicationsLog,
	}

	if p := in.Profile; p != nil {
		skills := p.SkillList()
		s.Skills = len(skills)
		s.ExperienceYears = p.ExperienceYears
		s.Education = len(p.Education)
		s.TopSkills = skills[:min(len(skills), topSkills)]
	}

	counts := map[string]int{}
	if in.Found != nil {
		counts = in.Found.CountByPlatform()
		s.JobsFound = in.Found.Len()
	}

	names := slices.Clone(in.Platforms)
	for name := range counts {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		s.Platforms = append(s.Platforms, PlatformCount{Name: name, Jobs: counts[name]})
	}

	if len(in.Applied) > 0 {
		s.LowestMatch = in.Applied[0].Score()
		var total float64
		for _, job := range in.Applied {
			score := job.Score()
			total += score
			s.HighestMatch = max(s.HighestMatch, score)
			s.LowestMatch = min(s.LowestMatch, score)
		}
		s.AverageMatch = total / float64(len(in.Applied))
	}

	return s
}

// SuccessRate is the share of found jobs that were applied for, in percent.
func (s *Summary) SuccessRate() float64 {
	if s.JobsFound == 0 {
		return 0
	}
	return 100 * float64(len(s.Applied)) / float64(s.JobsFound)
}

// Line renders one applied job.
func Line(job *matching.JobRecord) string {
	return fmt.Sprintf("%s at %s (%s) - %.1f%% match", job.Title, job.Company, job.Platform, job.Score())
}

func (s *Summary) WriteText(w io.Writer) error {
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, title, rule)
	}

	fmt.Fprintf(&b, "%s\nJOBBOT RUN COMPLETE\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(&b, "Run Time: %s UTC\n", s.StartedAt.UTC().Format(time.DateTime))
	fmt.Fprintf(&b, "Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "Minimum Resume Match Required: %.1f%%\n", s.MinMatch)

	section("RESUME PROFILE")
	fmt.Fprintf(&b, "Skills Detected: %d\n", s.Skills)
	fmt.Fprintf(&b, "Experience: %d years\n", s.ExperienceYears)
	fmt.Fprintf(&b, "Education: %d entries\n", s.Education)
	fmt.Fprintf(&b, "Top Skills: %s\n", strings.Join(s.TopSkills, ", "))

	section("PLATFORMS SEARCHED")
	for _, p := range s.Platforms {
		fmt.Fprintf(&b, "%s: %d jobs (meeting match criteria)\n", p.Name, p.Jobs)
	}
	fmt.Fprintf(&b, "\nTotal Matching Jobs Found: %d\n", s.JobsFound)

	section("MATCHING STATISTICS")
	fmt.Fprintf(&b, "Applications Sent: %d\n", len(s.Applied))
	fmt.Fprintf(&b, "Applications Failed: %d\n", s.Failed)
	fmt.Fprintf(&b, "Average Resume Match: %.1f%%\n", s.AverageMatch)
	fmt.Fprintf(&b, "Highest Resume Match: %.1f%%\n", s.HighestMatch)
	fmt.Fprintf(&b, "Lowest Resume Match: %.1f%%\n", s.LowestMatch)

	section(fmt.Sprintf("APPLIED (%d)", len(s.Applied)))
	for _, job := range s.Applied {
		b.WriteString(Line(job))
		b.WriteString("\n")
	}

	section("FINAL STATUS")
	if s.MaxApplications > 0 {
		fmt.Fprintf(&b, "Applications Sent: %d out of %d\n", len(s.Applied), s.MaxApplications)
	} else {
		fmt.Fprintf(&b, "Applications Sent: %d\n", len(s.Applied))
	}
	fmt.Fprintf(&b, "Success Rate: %.1f%% (of matching jobs found)\n", s.SuccessRate())
	if s.ApplicationsLog != "" {
		fmt.Fprintf(&b, "Log File: %s\n", s.ApplicationsLog)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Summary) String() string {
	var b strings.Builder
	_ = s.WriteText(&b)
	return b.String()
}

// ApplicationEntry is the proof record appended to the applications log for
// every submitted application.
func ApplicationEntry(job *matching.JobRecord, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - APPLIED WITH RESUME MATCHING\n", at.UTC().Format(time.DateTime))
	fmt.Fprintf(&b, "Platform: %s\n", job.Platform)
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Company: %s\n", job.Company)
	fmt.Fprintf(&b, "Salary: %s\n", boards.FormatSalary(job.SalaryMin, job.SalaryMax))
	fmt.Fprintf(&b, "Location: %s\n", orDefault(job.Location, "Not specified"))
	fmt.Fprintf(&b, "URL: %s\n\n", job.URL)

	b.WriteString("RESUME MATCHING ANALYSIS:\n")
	fmt.Fprintf(&b, "Overall Match: %.1f%%\n", job.Score())
	for _, c := range matching.Categories {
		fmt.Fprintf(&b, "%s Match: %.1f%%\n", titleCase(string(c)), job.Match.Component(c))
	}

	var matched, missing []string
	if job.Match != nil {
		matched = job.Match.Matched[matching.CategorySkills]
		missing = job.Match.Missing[matching.CategorySkills]
	}
	fmt.Fprintf(&b, "\nMatched Skills: %s\n", joinOr(matched, "N/A"))
	fmt.Fprintf(&b, "Missing Skills: %s\n", joinOr(missing, "None"))

	if job.AI != nil && job.AI.Error == "" {
		fmt.Fprintf(&b, "AI Assessment: score %.2f, %s\n", job.AI.Score, orDefault(job.AI.Reason, "no reason given"))
	}

	b.WriteString(strings.Repeat("-", len(rule)))
	b.WriteString("\n")

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

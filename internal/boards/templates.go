package boards

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/jobbot/internal/matching"
)

// Template describes a simulated listing for a platform without a usable
// public feed.
type Template struct {
	Title        string `yaml:"title"`
	Company      string `yaml:"company"`
	Salary       string `yaml:"salary"`
	Requirements string `yaml:"requirements"`
	Location     string `yaml:"location"`
}

// TemplateBoard turns templates into job records with stable IDs of the form
// "<platform>_NNN".
type TemplateBoard struct {
	platform  string
	templates []Template
}

func NewTemplateBoard(platform string, templates []Template) *TemplateBoard {
	return &TemplateBoard{platform: platform, templates: templates}
}

func (b *TemplateBoard) Name() string { return b.platform }

func (b *TemplateBoard) Search(ctx context.Context) (*Jobs, error) {
	jobs := NewJobs()
	slug := platformSlug(b.platform)

	for i, t := range b.templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := fmt.Sprintf("%s_%03d", slug, i+1)
		low, high := ExtractSalary(t.Salary)

		location := t.Location
		if location == "" {
			location = "Worldwide"
		}

		description := fmt.Sprintf("Seeking experienced %s for %s.", t.Title, t.Company)
		if req := strings.TrimSpace(t.Requirements); req != "" {
			description += " Requirements: " + req
		}

		jobs.Items = append(jobs.Items, &matching.JobRecord{
			ID:          id,
			Platform:    b.platform,
			Title:       t.Title,
			Company:     t.Company,
			Description: description,
			Location:    location,
			Tags:        splitRequirements(t.Requirements),
			SalaryMin:   low,
			SalaryMax:   high,
			URL:         fmt.Sprintf("https://%s.com/job/%s", strings.ReplaceAll(slug, "_", ""), id),
		})
	}

	return jobs, nil
}

// TemplateBoards builds one board per platform, in name order.
func TemplateBoards(set map[string][]Template) []Board {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Board, 0, len(names))
	for _, name := range names {
		result = append(result, NewTemplateBoard(name, set[name]))
	}
	return result
}

// LoadTemplates reads a YAML document mapping platform names to templates.
func LoadTemplates(path string) (map[string][]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	set := make(map[string][]Template)
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	return set, nil
}

// SelectTemplates keeps only the named platforms. An empty list keeps all.
func SelectTemplates(set map[string][]Template, platforms []string) map[string][]Template {
	if len(platforms) == 0 {
		return set
	}

	selected := make(map[string][]Template)
	for _, p := range platforms {
		for name, templates := range set {
			if strings.EqualFold(name, strings.TrimSpace(p)) {
				selected[name] = templates
			}
		}
	}
	return selected
}

// platformSlug keeps job ids free of spaces, which manual selection splits on.
func platformSlug(platform string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(platform), "/", " ")), "_")
}

func splitRequirements(req string) []string {
	var tags []string
	for _, part := range strings.Split(req, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// DefaultTemplates returns the built-in simulated listings.
func DefaultTemplates() map[string][]Template {
	return map[string][]Template{
		PlatformTwitter: {
			{Title: "Senior DevOps Engineer", Company: "X (Twitter)", Salary: "$120,000 - $180,000", Requirements: "Python, AWS, Docker, Kubernetes, Jenkins, 5+ years experience"},
			{Title: "DevOps Platform Engineer", Company: "X (Twitter)", Salary: "$110,000 - $160,000", Requirements: "DevOps, CI/CD, GitLab, Docker, 3+ years experience"},
			{Title: "DevOps Architect", Company: "X (Twitter)", Salary: "$140,000 - $200,000", Requirements: "AWS, Kubernetes, Terraform, Architecture, 7+ years experience"},
			{Title: "Site Reliability Engineer", Company: "X (Twitter)", Salary: "$115,000 - $170,000", Requirements: "Python, Linux, Monitoring, SRE practices, 4+ years experience"},
			{Title: "Cloud Infrastructure Engineer", Company: "X (Twitter)", Salary: "$105,000 - $155,000", Requirements: "AWS, Cloud infrastructure, Python, 3+ years experience"},
		},
		PlatformDice: {
			{Title: "DevOps Engineer", Company: "TechCorp", Salary: "$75,000 - $110,000", Requirements: "DevOps, CI/CD, Docker, AWS, 2+ years experience"},
			{Title: "Cloud Engineer", Company: "CloudCorp", Salary: "$80,000 - $120,000", Requirements: "AWS, Cloud services, Python, 3+ years experience"},
			{Title: "Platform Engineer", Company: "PlatformCorp", Salary: "$85,000 - $125,000", Requirements: "Kubernetes, Docker, Platform engineering, 3+ years experience"},
			{Title: "SRE Engineer", Company: "ReliableCorp", Salary: "$90,000 - $130,000", Requirements: "SRE, Prometheus, Grafana, Linux, 4+ years experience"},
			{Title: "Infrastructure Engineer", Company: "InfraCorp", Salary: "$70,000 - $105,000", Requirements: "Terraform, Ansible, Linux, 3+ years experience"},
			{Title: "CI/CD Engineer", Company: "AutomationCorp", Salary: "$75,000 - $115,000", Requirements: "CI/CD, Jenkins, GitHub Actions, Docker, 2+ years experience"},
		},
		PlatformIndeed: {
			{Title: "Remote DevOps Engineer", Company: "RemoteCorp", Salary: "$65,000 - $100,000", Requirements: "DevOps, Remote work, CI/CD, 2+ years experience"},
			{Title: "Cloud Infrastructure Engineer", Company: "CloudFirst", Salary: "$70,000 - $110,000", Requirements: "Cloud infrastructure, AWS, DevOps, 3+ years experience"},
			{Title: "Senior Platform Engineer", Company: "ScaleCorp", Salary: "$95,000 - $140,000", Requirements: "Kubernetes, Golang, Terraform, 6+ years experience"},
			{Title: "Full Stack Developer", Company: "WebCorp", Salary: "$60,000 - $95,000", Requirements: "JavaScript, React, Node.js, PostgreSQL, 3+ years experience"},
			{Title: "Backend Engineer", Company: "APICorp", Salary: "$65,000 - $105,000", Requirements: "Python, Django, PostgreSQL, Redis, 3+ years experience"},
		},
		PlatformWeWorkRemotely: {
			{Title: "Remote DevOps Engineer", Company: "GlobalTech", Salary: "$70,000 - $110,000", Requirements: "DevOps, Remote collaboration, CI/CD, 2+ years experience"},
			{Title: "Senior Software Engineer", Company: "DistributedCorp", Salary: "$80,000 - $120,000", Requirements: "Golang, Microservices, Kafka, 5+ years experience"},
			{Title: "Cloud Platform Engineer", Company: "RemoteFirst", Salary: "$85,000 - $125,000", Requirements: "GCP, Kubernetes, Helm, 4+ years experience"},
			{Title: "Site Reliability Engineer", Company: "UptimeCorp", Salary: "$90,000 - $135,000", Requirements: "SRE, AWS, Prometheus, Python, 4+ years experience"},
		},
		PlatformTuring: {
			{Title: "DevOps Engineer - Remote", Company: "US Tech Company", Salary: "$60,000 - $90,000", Requirements: "DevOps, Python, AWS, Remote work, 2+ years experience"},
			{Title: "Cloud Engineer - Full Stack", Company: "Silicon Valley Startup", Salary: "$70,000 - $100,000", Requirements: "AWS, React, Python, 3+ years experience"},
			{Title: "Platform Engineer - Global", Company: "Enterprise Client", Salary: "$80,000 - $120,000", Requirements: "Kubernetes, Terraform, Azure, 4+ years experience"},
			{Title: "SRE - DevOps Focus", Company: "Fortune 500", Salary: "$85,000 - $125,000", Requirements: "SRE, Linux, Ansible, 5+ years experience"},
			{Title: "Infrastructure Engineer", Company: "Tech Unicorn", Salary: "$75,000 - $110,000", Requirements: "AWS, Terraform, Bash, 3+ years experience"},
		},
		PlatformWellfound: {
			{Title: "Founding DevOps Engineer", Company: "Seed Stage Startup", Salary: "$110,000 - $150,000", Requirements: "AWS, Terraform, Kubernetes, CI/CD, 4+ years experience"},
			{Title: "Backend Engineer", Company: "Series A Fintech", Salary: "$100,000 - $140,000", Requirements: "Golang, PostgreSQL, Kafka, 3+ years experience"},
			{Title: "Platform Engineer", Company: "AI Infrastructure Co", Salary: "$120,000 - $170,000", Requirements: "Python, Kubernetes, GCP, Bachelor degree, 5+ years experience"},
		},
	}
}

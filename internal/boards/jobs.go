package boards

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spigell/jobbot/internal/matching"
)

const (
	JobIDField       = "ID"
	JobCompanyField  = "Company"
	JobPlatformField = "Platform"
)

// Jobs is an ordered collection of job records. Order is significant: jobs
// with equal scores keep the order in which they were collected.
type Jobs struct {
	Items []*matching.JobRecord
}

// NewJobs wraps records into a collection.
func NewJobs(items ...*matching.JobRecord) *Jobs {
	return &Jobs{Items: items}
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *matching.JobRecord {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) Append(other *Jobs) {
	if other == nil {
		return
	}
	j.Items = append(j.Items, other.Items...)
}

// Dedup drops later jobs whose ID was already seen and returns their IDs.
func (j *Jobs) Dedup() []string {
	seen := make(map[string]struct{}, len(j.Items))
	var dropped []string

	j.Items = slices.DeleteFunc(j.Items, func(job *matching.JobRecord) bool {
		if _, ok := seen[job.ID]; ok {
			dropped = append(dropped, job.ID)
			return true
		}
		seen[job.ID] = struct{}{}
		return false
	})

	return dropped
}

// Exclude removes every job whose field matches one of targets
// (case-insensitively) and returns the removed IDs.
func (j *Jobs) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	var excluded []string
	j.Items = slices.DeleteFunc(j.Items, func(job *matching.JobRecord) bool {
		if _, ok := set[strings.ToLower(strings.TrimSpace(fieldOf(job, name)))]; ok {
			excluded = append(excluded, job.ID)
			return true
		}
		return false
	})

	return excluded
}

// Keep retains the jobs for which fn returns true and returns the IDs of the
// dropped ones.
func (j *Jobs) Keep(fn func(job *matching.JobRecord) bool) []string {
	var dropped []string
	j.Items = slices.DeleteFunc(j.Items, func(job *matching.JobRecord) bool {
		if fn(job) {
			return false
		}
		dropped = append(dropped, job.ID)
		return true
	})
	return dropped
}

// RemoveByIndex removes the job at idx, preserving order.
func (j *Jobs) RemoveByIndex(idx int) {
	j.Items = slices.Delete(j.Items, idx, idx+1)
}

// SortByScore orders jobs by match score, highest first. Ties keep their
// collection order.
func (j *Jobs) SortByScore() {
	sort.SliceStable(j.Items, func(a, b int) bool {
		return j.Items[a].Score() > j.Items[b].Score()
	})
}

// Top returns the first n jobs as a new collection.
func (j *Jobs) Top(n int) *Jobs {
	if n < 0 || n >= len(j.Items) {
		return NewJobs(j.Items...)
	}
	return NewJobs(j.Items[:n]...)
}

// CountByPlatform returns the number of jobs per platform.
func (j *Jobs) CountByPlatform() map[string]int {
	counts := make(map[string]int)
	for _, job := range j.Items {
		counts[job.Platform]++
	}
	return counts
}

func (j *Jobs) ReportByPlatform() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range j.Items {
		entry := map[string]string{
			"id":       job.ID,
			"title":    job.Title,
			"company":  job.Company,
			"url":      job.URL,
			"location": job.Location,
			"salary":   FormatSalary(job.SalaryMin, job.SalaryMax),
		}

		if job.Match != nil {
			entry["match"] = fmt.Sprintf("%.1f", job.Match.Overall)
			entry["missing_skills"] = strings.Join(job.Match.Missing[matching.CategorySkills], ", ")
		}

		if job.AI != nil {
			if job.AI.Error != "" {
				entry["ai_error"] = job.AI.Error
			} else {
				entry["ai_fit"] = fmt.Sprintf("%t", job.AI.Fit)
				entry["ai_score"] = fmt.Sprintf("%.2f", job.AI.Score)
				entry["ai_reason"] = job.AI.Reason
			}
		}

		report[job.Platform] = append(report[job.Platform], entry)
	}
	return report
}

func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func fieldOf(job *matching.JobRecord, name string) string {
	switch name {
	case JobIDField:
		return job.ID
	case JobCompanyField:
		return job.Company
	case JobPlatformField:
		return job.Platform
	default:
		return ""
	}
}

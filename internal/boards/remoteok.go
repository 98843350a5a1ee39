package boards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/matching"
)

const (
	remoteOKURL          = "https://remoteok.com/api"
	remoteOKJobURLPrefix = "https://remoteok.com/remote-jobs/"
	defaultRemoteOKLimit = 100
)

type remoteOKItem struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	SalaryMin   int      `json:"salary_min"`
	SalaryMax   int      `json:"salary_max"`
	Date        string   `json:"date"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
}

// RemoteOK reads the public RemoteOK JSON API.
type RemoteOK struct {
	client *Client
	URL    string
	Limit  int
	// Tags, when set, keep only listings mentioning one of them.
	Tags []string
}

func NewRemoteOK(client *Client, tags []string, limit int) *RemoteOK {
	if limit <= 0 {
		limit = defaultRemoteOKLimit
	}

	return &RemoteOK{
		client: client,
		URL:    remoteOKURL,
		Limit:  limit,
		Tags:   tags,
	}
}

func (r *RemoteOK) Name() string { return PlatformRemoteOK }

func (r *RemoteOK) Search(ctx context.Context) (*Jobs, error) {
	items, err := r.client.GetItems(ctx, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}

	jobs := NewJobs()

	// The first element is a legal notice, not a job.
	if len(items) <= 1 {
		return jobs, nil
	}

	for _, item := range items[1:] {
		var raw remoteOKItem
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &raw,
			TagName:          "json",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(item); err != nil {
			r.client.logger.Debug("skipping undecodable remoteok item", zap.Error(err))
			continue
		}

		if raw.ID == "" || raw.Position == "" {
			continue
		}

		job := raw.toJob()
		if !matchesTags(job, r.Tags) {
			continue
		}

		jobs.Items = append(jobs.Items, job)
		if jobs.Len() >= r.Limit {
			break
		}
	}

	return jobs, nil
}

func (raw *remoteOKItem) toJob() *matching.JobRecord {
	description := htmlToText(raw.Description)

	low, high := raw.SalaryMin, raw.SalaryMax
	if low == 0 && high == 0 {
		low, high = ExtractSalary(description + " " + raw.Position)
	}

	link := raw.URL
	if link == "" && raw.Slug != "" {
		link = remoteOKJobURLPrefix + raw.Slug
	}

	posted := raw.Date
	if t, err := time.Parse(time.RFC3339, raw.Date); err == nil {
		posted = t.UTC().Format(time.DateOnly)
	}

	location := strings.TrimSpace(raw.Location)
	if location == "" {
		location = "Remote"
	}

	return &matching.JobRecord{
		ID:          "remoteok_" + raw.ID,
		Platform:    PlatformRemoteOK,
		Title:       strings.TrimSpace(raw.Position),
		Company:     strings.TrimSpace(raw.Company),
		Description: description,
		Location:    location,
		Tags:        raw.Tags,
		SalaryMin:   low,
		SalaryMax:   high,
		URL:         link,
		ApplyURL:    raw.ApplyURL,
		PostedAt:    posted,
	}
}

func matchesTags(job *matching.JobRecord, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	haystack := strings.ToLower(job.Title + " " + strings.Join(job.Tags, " "))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" && strings.Contains(haystack, tag) {
			return true
		}
	}
	return false
}

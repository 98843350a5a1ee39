package boards

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/jobbot/internal/matching"
)

const (
	wwrURL          = "https://weworkremotely.com/remote-jobs.rss"
	defaultWWRLimit = 100
)

type wwrRSS struct {
	XMLName xml.Name   `xml:"rss"`
	Channel wwrChannel `xml:"channel"`
}

type wwrChannel struct {
	Items []wwrItem `xml:"item"`
}

type wwrItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Region      string `xml:"region"`
	Category    string `xml:"category"`
	Skills      string `xml:"skills"`
}

// WeWorkRemotely reads the public RSS feed.
type WeWorkRemotely struct {
	client *Client
	URL    string
	Limit  int
	Tags   []string
}

func NewWeWorkRemotely(client *Client, tags []string, limit int) *WeWorkRemotely {
	if limit <= 0 {
		limit = defaultWWRLimit
	}

	return &WeWorkRemotely{
		client: client,
		URL:    wwrURL,
		Limit:  limit,
		Tags:   tags,
	}
}

func (w *WeWorkRemotely) Name() string { return PlatformWeWorkRemotely }

func (w *WeWorkRemotely) Search(ctx context.Context) (*Jobs, error) {
	body, err := w.client.get(ctx, w.URL, nil, "application/rss+xml, application/xml")
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: %w", err)
	}

	var feed wwrRSS
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("weworkremotely: parse feed: %w", err)
	}

	jobs := NewJobs()
	for _, item := range feed.Channel.Items {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		job := item.toJob()
		if !matchesTags(job, w.Tags) {
			continue
		}

		jobs.Items = append(jobs.Items, job)
		if jobs.Len() >= w.Limit {
			break
		}
	}

	return jobs, nil
}

func (item *wwrItem) toJob() *matching.JobRecord {
	title, company := splitWWRTitle(item.Title)
	description := htmlToText(item.Description)
	low, high := ExtractSalary(description)

	var tags []string
	for _, s := range strings.Split(item.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}
	if item.Category != "" {
		tags = append(tags, strings.TrimSpace(item.Category))
	}

	key := item.GUID
	if key == "" {
		key = item.Link
	}
	sum := sha1.Sum([]byte(key))

	posted := ""
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, item.PubDate); err == nil {
			posted = t.UTC().Format(time.DateOnly)
			break
		}
	}

	location := strings.TrimSpace(item.Region)
	if location == "" {
		location = "Anywhere"
	}

	return &matching.JobRecord{
		ID:          "weworkremotely_" + hex.EncodeToString(sum[:])[:12],
		Platform:    PlatformWeWorkRemotely,
		Title:       title,
		Company:     company,
		Description: description,
		Location:    location,
		Tags:        tags,
		SalaryMin:   low,
		SalaryMax:   high,
		URL:         strings.TrimSpace(item.Link),
		PostedAt:    posted,
	}
}

// splitWWRTitle splits the feed's "Company: Title" format.
func splitWWRTitle(raw string) (title, company string) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, ": "); idx > 0 {
		return strings.TrimSpace(raw[idx+2:]), strings.TrimSpace(raw[:idx])
	}
	return raw, ""
}

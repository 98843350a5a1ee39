package boards

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	ExcludeActorUser = "user"
	ExcludeActorAI   = "ai"
)

type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	ID         string
	Platform   string
	Company    string
	URL        string
	Actor      string `json:",omitempty"`
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

func (j *Jobs) ToExcluded(actor, reason string) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, job := range j.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         job.ID,
			Platform:   job.Platform,
			Company:    job.Company,
			URL:        job.URL,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedJobsFromFile reads an exclude file. A missing or empty file
// yields an empty list.
func GetExcludedJobsFromFile(path string) (*ExcludedJobs, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedJobs{}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedJobs) Append(s *ExcludedJobs) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedJobs) JobIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, job := range e.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

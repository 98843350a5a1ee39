package boards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/jobbot/internal/matching"
)

func scored(id, platform, company string, score float64) *matching.JobRecord {
	return &matching.JobRecord{
		ID:       id,
		Platform: platform,
		Company:  company,
		Title:    "DevOps Engineer",
		Match:    &matching.MatchResult{Overall: score},
	}
}

func TestSortByScoreIsStable(t *testing.T) {
	jobs := NewJobs(
		scored("a", PlatformDice, "A", 50),
		scored("b", PlatformDice, "B", 80),
		scored("c", PlatformDice, "C", 50),
		scored("d", PlatformDice, "D", 80),
		&matching.JobRecord{ID: "e"},
	)

	jobs.SortByScore()

	want := []string{"b", "d", "a", "c", "e"}
	for i, id := range want {
		if jobs.Items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, jobs.Items[i].ID)
		}
	}
}

func TestExcludeRemovesAllMatchesAndKeepsOrder(t *testing.T) {
	jobs := NewJobs(
		scored("1", PlatformIndeed, "Acme", 10),
		scored("2", PlatformIndeed, "Globex", 20),
		scored("3", PlatformDice, "acme ", 30),
		scored("4", PlatformDice, "Initech", 40),
	)

	excluded := jobs.Exclude(JobCompanyField, []string{"ACME"})
	if len(excluded) != 2 || excluded[0] != "1" || excluded[1] != "3" {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if jobs.Len() != 2 || jobs.Items[0].ID != "2" || jobs.Items[1].ID != "4" {
		t.Fatalf("unexpected remaining jobs: %+v", jobs.Items)
	}

	if got := jobs.Exclude(JobIDField, nil); got != nil {
		t.Fatalf("expected nothing excluded, got %v", got)
	}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	first := scored("dup", PlatformTuring, "First", 1)
	jobs := NewJobs(first, scored("x", PlatformTuring, "X", 1), scored("dup", PlatformTuring, "Second", 1))

	dropped := jobs.Dedup()
	if len(dropped) != 1 || dropped[0] != "dup" {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if jobs.FindByID("dup") != first {
		t.Fatalf("expected the first duplicate to survive")
	}
}

func TestKeepAndTop(t *testing.T) {
	jobs := NewJobs(scored("1", "p", "c", 90), scored("2", "p", "c", 40), scored("3", "p", "c", 70))

	dropped := jobs.Keep(func(job *matching.JobRecord) bool { return job.Score() >= 60 })
	if len(dropped) != 1 || dropped[0] != "2" {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}

	if top := jobs.Top(1); top.Len() != 1 || top.Items[0].ID != "1" {
		t.Fatalf("unexpected top: %+v", top.Items)
	}
	if top := jobs.Top(10); top.Len() != 2 {
		t.Fatalf("expected all jobs, got %d", top.Len())
	}

	jobs.RemoveByIndex(0)
	if jobs.Len() != 1 || jobs.Items[0].ID != "3" {
		t.Fatalf("unexpected jobs after removal: %+v", jobs.Items)
	}
}

func TestReportByPlatformIncludesMatchAndAI(t *testing.T) {
	job := scored("remoteok_1", PlatformRemoteOK, "Acme", 72.5)
	job.SalaryMin, job.SalaryMax = 90000, 120000
	job.Match.Missing = map[matching.Category][]string{matching.CategorySkills: {"kafka", "rust"}}
	job.AI = &matching.AIAssessment{Fit: true, Score: 0.91, Reason: "Matches tech stack"}

	failed := scored("remoteok_2", PlatformRemoteOK, "Globex", 10)
	failed.AI = &matching.AIAssessment{Error: "quota exceeded"}

	report := NewJobs(job, failed).ReportByPlatform()

	entries := report[PlatformRemoteOK]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	entry := entries[0]
	if entry["match"] != "72.5" {
		t.Fatalf("unexpected match: %q", entry["match"])
	}
	if entry["salary"] != "$90,000 - $120,000" {
		t.Fatalf("unexpected salary: %q", entry["salary"])
	}
	if entry["missing_skills"] != "kafka, rust" {
		t.Fatalf("unexpected missing skills: %q", entry["missing_skills"])
	}
	if entry["ai_fit"] != "true" || entry["ai_score"] != "0.91" {
		t.Fatalf("unexpected ai fields: %v", entry)
	}

	if entries[1]["ai_error"] != "quota exceeded" {
		t.Fatalf("unexpected ai_error: %q", entries[1]["ai_error"])
	}
	if _, ok := entries[1]["ai_fit"]; ok {
		t.Fatalf("did not expect ai_fit for error case")
	}
}

func TestExcludedJobsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	missing, err := GetExcludedJobsFromFile(path)
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(missing.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(missing.Items))
	}

	jobs := NewJobs(scored("dice_001", PlatformDice, "TechCorp", 0))
	missing.Append(jobs.ToExcluded(ExcludeActorAI, "too junior"))
	if err := missing.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := GetExcludedJobsFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ids := loaded.JobIDs()
	if len(ids) != 1 || ids[0] != "dice_001" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if loaded.Items[0].Actor != ExcludeActorAI || loaded.Items[0].Reason != "too junior" {
		t.Fatalf("unexpected item: %+v", loaded.Items[0])
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	empty, err := GetExcludedJobsFromFile(path)
	if err != nil || len(empty.Items) != 0 {
		t.Fatalf("expected empty list for empty file, got %v, %v", empty, err)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := NewJobs(scored("1", "p", "c", 1)).DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	defer os.Remove(name)

	if info, err := os.Stat(name); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty dump file, got %v", err)
	}
}

package matching

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreJobExampleScenario(t *testing.T) {
	profile := NewResumeProfile([]string{"python", "aws", "docker"}, []string{"aws", "docker"}, 5)
	job := &JobRecord{ID: "x_001", Description: "Looking for Python and AWS engineer, 3+ years required"}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Components[CategorySkills])
	assert.Equal(t, 100.0, result.Components[CategoryTechnology])
	assert.Equal(t, 100.0, result.Components[CategoryExperience])
	assert.Equal(t, 100.0, result.Components[CategoryEducation])
	assert.Equal(t, 100.0, result.Overall)

	assert.Equal(t, []string{"aws", "python"}, result.Matched[CategorySkills])
	assert.Empty(t, result.Missing[CategorySkills])
	assert.Equal(t, []string{"aws"}, result.Matched[CategoryTechnology])
	assert.Equal(t, []string{"3+ years"}, result.Matched[CategoryExperience])
}

func TestScoreJobTechnologiesFromSkills(t *testing.T) {
	profile := NewResumeProfile([]string{"python", "aws", "docker"}, nil, 5)
	job := &JobRecord{ID: "x_001", Description: "Looking for Python and AWS engineer, 3+ years required"}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Components[CategoryTechnology])
	assert.Equal(t, 100.0, result.Overall)
	assert.Equal(t, []string{"aws"}, result.Matched[CategoryTechnology])
	assert.Empty(t, result.Missing[CategoryTechnology])
}

func TestScoreJobPartialMatch(t *testing.T) {
	profile := NewResumeProfile([]string{"python"}, nil, 2)
	job := &JobRecord{
		ID:          "dice_002",
		Description: "Python, Golang, Kubernetes and AWS. 4 years of experience. Bachelor degree required.",
	}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, result.Components[CategorySkills], 1e-9)
	assert.Equal(t, 0.0, result.Components[CategoryTechnology])
	assert.InDelta(t, 50.0, result.Components[CategoryExperience], 1e-9)
	assert.Equal(t, DefaultEducationPartialCredit, result.Components[CategoryEducation])
	assert.InDelta(t, 25.0, result.Overall, 1e-9)

	assert.Equal(t, []string{"aws", "golang", "kubernetes"}, result.Missing[CategorySkills])
	assert.Equal(t, []string{"aws", "kubernetes"}, result.Missing[CategoryTechnology])
	assert.Equal(t, []string{"4+ years"}, result.Missing[CategoryExperience])
	assert.Equal(t, []string{"bachelor", "degree"}, result.Missing[CategoryEducation])
}

func TestScoreJobEmptyDescription(t *testing.T) {
	profile := NewResumeProfile([]string{"python", "aws"}, []string{"aws"}, 3)

	result, err := ScoreJob(profile, &JobRecord{ID: "empty"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Components[CategorySkills])
	assert.Equal(t, 0.0, result.Components[CategoryTechnology])
	assert.Equal(t, 100.0, result.Components[CategoryExperience])
	assert.Equal(t, 100.0, result.Components[CategoryEducation])
	assert.InDelta(t, 30.0, result.Overall, 1e-9)
}

func TestScoreJobSupersetGivesFullSkills(t *testing.T) {
	profile := NewResumeProfile([]string{"python", "golang", "docker", "terraform", "postgresql", "kafka"}, []string{"docker", "terraform", "postgresql", "kafka"}, 1)
	job := &JobRecord{Description: "We use Golang, Docker and PostgreSQL. Kafka is a plus."}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Components[CategorySkills])
	assert.Equal(t, 100.0, result.Components[CategoryTechnology])
}

func TestScoreJobWholeWordMatching(t *testing.T) {
	profile := NewResumeProfile([]string{"java"}, nil, 0)
	job := &JobRecord{Description: "Senior JavaScript developer"}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Matched[CategorySkills])
	assert.Equal(t, []string{"javascript"}, result.Missing[CategorySkills])
	assert.Equal(t, 0.0, result.Components[CategorySkills])
}

func TestScoreJobProfileTermOutsideVocabulary(t *testing.T) {
	profile := NewResumeProfile([]string{"Haskell"}, nil, 0)
	job := &JobRecord{Description: "Haskell and Python engineers wanted"}

	result, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"haskell"}, result.Matched[CategorySkills])
	assert.Equal(t, []string{"python"}, result.Missing[CategorySkills])
	assert.InDelta(t, 50.0, result.Components[CategorySkills], 1e-9)
}

func TestScoreJobExperience(t *testing.T) {
	tests := []struct {
		name   string
		years  int
		text   string
		expect float64
	}{
		{name: "no requirement", years: 0, text: "Python developer", expect: 100},
		{name: "meets", years: 5, text: "5 years of Python", expect: 100},
		{name: "exceeds", years: 9, text: "at least 3 yrs", expect: 100},
		{name: "scaled down", years: 1, text: "4+ years required", expect: 25},
		{name: "range uses lower bound", years: 3, text: "3-5 years experience", expect: 100},
		{name: "first requirement wins", years: 2, text: "2 years with AWS, 8 years overall", expect: 100},
		{name: "zero requirement", years: 0, text: "0 years needed", expect: 100},
		{name: "longer figures ignored", years: 1, text: "100 years of history, 2 years required", expect: 50},
		{name: "zero skipped for later requirement", years: 2, text: "0 years of drama, 4 years of Terraform", expect: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ScoreJob(NewResumeProfile(nil, nil, tt.years), &JobRecord{Description: tt.text}, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.expect, result.Components[CategoryExperience], 1e-9)
		})
	}
}

func TestScoreJobEducation(t *testing.T) {
	tests := []struct {
		name      string
		education []string
		text      string
		expect    float64
	}{
		{name: "no requirement", text: "Python developer", expect: 100},
		{name: "matching keyword", education: []string{"Master of Science in Computer Science"}, text: "Master degree preferred", expect: 100},
		{name: "named degree satisfies degree", education: []string{"BSc Computer Science"}, text: "Degree in CS required", expect: 100},
		{name: "missing", education: nil, text: "PhD required", expect: DefaultEducationPartialCredit},
		{name: "different qualification", education: []string{"AWS Certified Solutions Architect"}, text: "Bachelor required", expect: DefaultEducationPartialCredit},
		{name: "scrum master is a role", text: "Scrum Master on the team", expect: 100},
		{name: "associate is a title", text: "Associate Engineer, remote", expect: 100},
		{name: "master's required", text: "Master's in Computer Science", expect: DefaultEducationPartialCredit},
		{name: "master's met", education: []string{"Master of Science, MIT"}, text: "Master's in Computer Science", expect: 100},
		{name: "associate degree met", education: []string{"Associate of Applied Science"}, text: "Associate degree required", expect: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ScoreJob(NewResumeProfile(nil, nil, 0, tt.education...), &JobRecord{Description: tt.text}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, result.Components[CategoryEducation])
		})
	}
}

func TestScorerEducationPartialCredit(t *testing.T) {
	scorer, err := NewScorer(DefaultVocabulary(), DefaultWeights(), WithEducationPartialCredit(20))
	require.NoError(t, err)

	result, err := scorer.Score(NewResumeProfile(nil, nil, 0), &JobRecord{Description: "MBA required"})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Components[CategoryEducation])

	_, err = NewScorer(DefaultVocabulary(), DefaultWeights(), WithEducationPartialCredit(120))
	require.Error(t, err)
}

func TestScoreJobSkillsOnlyWeights(t *testing.T) {
	profile := NewResumeProfile([]string{"python", "sql"}, nil, 1)
	job := &JobRecord{Description: "Python, SQL, Rust. 6 years. Bachelor required."}
	weights := &Weights{Skills: 1}

	result, err := ScoreJob(profile, job, weights)
	require.NoError(t, err)
	assert.Equal(t, result.Components[CategorySkills], result.Overall)
}

func TestScoreJobOverallIsWeightedSum(t *testing.T) {
	profile := ExtractResumeProfile(sampleResume)
	weights := Weights{Skills: 0.25, Technology: 0.25, Experience: 0.25, Education: 0.25}

	jobs := []*JobRecord{
		{Description: "Golang, Kubernetes, Terraform. 10+ years. Master degree."},
		{Description: "React and Node.js, TypeScript"},
		{Description: ""},
		{Description: "Python Django PostgreSQL Redis 2 years"},
	}

	for _, job := range jobs {
		result, err := ScoreJob(profile, job, &weights)
		require.NoError(t, err)

		expected := 0.0
		for _, c := range Categories {
			value := result.Components[c]
			assert.GreaterOrEqual(t, value, 0.0)
			assert.LessOrEqual(t, value, 100.0)
			expected += 0.25 * value
		}
		assert.InDelta(t, expected, result.Overall, 1e-9)
		assert.GreaterOrEqual(t, result.Overall, 0.0)
		assert.LessOrEqual(t, result.Overall, 100.0)
	}
}

func TestContainsWordReusesPattern(t *testing.T) {
	assert.True(t, containsWord("Daily C++ and Bash", "c++"))
	_, cached := wordCache.Load("c++")
	assert.True(t, cached)
	assert.True(t, containsWord("c++ tooling", "c++"))
	assert.False(t, containsWord("c++11", "c++"))
}

func TestScoreJobIsDeterministic(t *testing.T) {
	profile := ExtractResumeProfile(sampleResume)
	job := &JobRecord{Description: "Golang, Python, AWS, Docker and Kafka. 3-5 years. Bachelor degree."}

	first, err := ScoreJob(profile, job, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*MatchResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ScoreJob(profile, job, nil)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, first, r)
	}
}

func TestScoreJobInvalidInput(t *testing.T) {
	_, err := ScoreJob(nil, &JobRecord{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = ScoreJob(NewResumeProfile(nil, nil, 0), nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	result, err := ScoreJob(&ResumeProfile{}, &JobRecord{Description: "Python 3 years"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Components[CategorySkills])
}

func TestScoreJobRejectsBadWeights(t *testing.T) {
	_, err := ScoreJob(NewResumeProfile(nil, nil, 0), &JobRecord{}, &Weights{Skills: 0.5})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestScorerAttach(t *testing.T) {
	scorer, err := NewScorer(DefaultVocabulary(), DefaultWeights())
	require.NoError(t, err)

	job := &JobRecord{Description: "Docker"}
	require.NoError(t, scorer.Attach(NewResumeProfile([]string{"docker"}, []string{"docker"}, 0), job))
	require.NotNil(t, job.Match)
	assert.Equal(t, 100.0, job.Score())

	assert.Equal(t, 0.0, (&JobRecord{}).Score())
}

package matching

import (
	"regexp"
	"strings"
	"sync"
)

// Vocabulary is the fixed list of terms the extractor and scorer look for.
// Technologies name tools and platforms, Skills hold everything else
// (languages, practices). Education holds degree and certification keywords.
type Vocabulary struct {
	Skills       []string `mapstructure:"skills" yaml:"skills"`
	Technologies []string `mapstructure:"technologies" yaml:"technologies"`
	Education    []string `mapstructure:"education" yaml:"education"`
}

// DefaultVocabulary returns a copy of the built-in vocabulary.
//
// "go" is deliberately absent: as a whole word it matches ordinary English.
// Résumés and listings are expected to say "golang".
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Skills: []string{
			"python", "java", "javascript", "typescript", "golang", "rust", "c++", "c#",
			"ruby", "php", "scala", "kotlin", "swift", "bash", "shell", "sql", "html", "css",
			"devops", "ci/cd", "agile", "scrum", "kanban", "microservices", "machine learning",
			"data analysis", "tdd", "sre", "networking", "security", "rest api", "automation",
		},
		Technologies: []string{
			"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "k8s", "terraform",
			"ansible", "jenkins", "gitlab", "github actions", "circleci", "helm", "prometheus",
			"grafana", "linux", "nginx", "postgresql", "postgres", "mysql", "mongodb", "redis",
			"elasticsearch", "kafka", "rabbitmq", "dynamodb", "sqlite", "git", "jira", "react",
			"angular", "vue", "django", "flask", "fastapi", "spring", "node.js", "graphql",
			"spark", "hadoop", "airflow", "tensorflow", "pytorch", "serverless", "lambda",
			"cloudformation", "openshift",
		},
		Education: []string{
			"bachelor", "bachelors", "master", "masters", "phd", "ph.d", "doctorate", "associate",
			"diploma", "degree", "mba", "bsc", "msc", "b.sc", "m.sc", "certified", "certification",
		},
	}
}

// degreeKeywords satisfy a generic "degree" requirement.
var degreeKeywords = []string{
	"bachelor", "bachelors", "master", "masters", "phd", "ph.d", "doctorate",
	"associate", "mba", "bsc", "msc", "b.sc", "m.sc", "degree",
}

// jobEducationForms narrows education words that double as job titles
// ("Scrum Master", "Associate Engineer") to their degree forms when the
// scorer reads a listing. Résumé lines still match the bare word.
var jobEducationForms = map[string]string{
	"master":    `master(?:'s|’s|\s+of|\s+degree)`,
	"masters":   `masters(?:\s+of|\s+degree)`,
	"associate": `associate(?:'s|’s|\s+of|\s+degree)`,
}

type term struct {
	name string
	re   *regexp.Regexp
	// listing is the pattern used on job text; it equals re unless the word
	// is ambiguous there.
	listing *regexp.Regexp
}

// compiledVocabulary is the immutable, regexp-backed form of a Vocabulary.
type compiledVocabulary struct {
	skills       []term
	technologies []term
	education    []term
	techSet      map[string]struct{}
}

func (v Vocabulary) compile() *compiledVocabulary {
	cv := &compiledVocabulary{techSet: make(map[string]struct{})}
	seen := make(map[string]struct{})

	for _, t := range v.Technologies {
		name := normalizeTerm(t)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cv.techSet[name] = struct{}{}
		cv.technologies = append(cv.technologies, term{name: name, re: wordRegexp(name)})
	}

	// skills cover the whole vocabulary, technologies included
	cv.skills = append(cv.skills, cv.technologies...)
	for _, s := range v.Skills {
		name := normalizeTerm(s)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cv.skills = append(cv.skills, term{name: name, re: wordRegexp(name)})
	}

	eduSeen := make(map[string]struct{})
	for _, e := range v.Education {
		name := normalizeTerm(e)
		if name == "" {
			continue
		}
		if _, ok := eduSeen[name]; ok {
			continue
		}
		eduSeen[name] = struct{}{}
		t := term{name: name, re: wordRegexp(name)}
		t.listing = t.re
		if form, ok := jobEducationForms[name]; ok {
			t.listing = boundedRegexp(form)
		}
		cv.education = append(cv.education, t)
	}

	return cv
}

func (cv *compiledVocabulary) isTechnology(name string) bool {
	_, ok := cv.techSet[name]
	return ok
}

// wordRegexp matches term case-insensitively when it is not glued to other
// letters or digits, so "java" does not match inside "javascript".
func wordRegexp(name string) *regexp.Regexp {
	return boundedRegexp(regexp.QuoteMeta(name))
}

func boundedRegexp(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + pattern + `(?:$|[^\p{L}\p{N}])`)
}

// wordCache holds the patterns of profile terms, which are not part of any
// compiled vocabulary.
var wordCache sync.Map

func normalizeTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsWord(text, name string) bool {
	re, ok := wordCache.Load(name)
	if !ok {
		re, _ = wordCache.LoadOrStore(name, wordRegexp(name))
	}
	return re.(*regexp.Regexp).MatchString(text)
}

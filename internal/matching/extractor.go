package matching

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+\d{1,3}\s?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedInRe = regexp.MustCompile(`(?i)linkedin\.com/in/([\w-]+)`)

	// "5 years", "5+ years", "7 yrs"
	resumeYearsRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)
)

var defaultCompiled = sync.OnceValue(func() *compiledVocabulary {
	return DefaultVocabulary().compile()
})

// Extractor turns résumé text into a ResumeProfile. It is safe for
// concurrent use.
type Extractor struct {
	vocab *compiledVocabulary
}

func NewExtractor(vocab Vocabulary) *Extractor {
	return &Extractor{vocab: vocab.compile()}
}

// ExtractResumeProfile parses raw résumé text with the built-in vocabulary.
// It never fails: empty or garbled input gives an empty profile.
func ExtractResumeProfile(raw string) *ResumeProfile {
	return (&Extractor{vocab: defaultCompiled()}).Extract(raw)
}

func (e *Extractor) Extract(raw string) *ResumeProfile {
	profile := &ResumeProfile{
		Skills:       mapset.NewSet[string](),
		Technologies: mapset.NewSet[string](),
		Education:    []string{},
	}

	text := strings.ToValidUTF8(raw, " ")
	if strings.TrimSpace(text) == "" {
		return profile
	}

	for _, t := range e.vocab.skills {
		if !t.re.MatchString(text) {
			continue
		}
		profile.Skills.Add(t.name)
		if e.vocab.isTechnology(t.name) {
			profile.Technologies.Add(t.name)
		}
	}

	profile.ExperienceYears = maxYears(text)
	profile.Education = e.educationEntries(text)
	profile.Contact = extractContact(text)

	return profile
}

// maxYears returns the largest "<N> years" figure found, 0 when none.
func maxYears(text string) int {
	years := 0
	for _, m := range resumeYearsRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > years {
			years = n
		}
	}
	return years
}

func (e *Extractor) educationEntries(text string) []string {
	entries := []string{}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.TrimLeft(line, "-*•· ")
		if line == "" {
			continue
		}

		for _, t := range e.vocab.education {
			if !t.re.MatchString(line) {
				continue
			}
			key := strings.ToLower(line)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				entries = append(entries, line)
			}
			break
		}
	}

	return entries
}

func extractContact(text string) Contact {
	var c Contact
	c.Email = emailRe.FindString(text)
	c.Phone = strings.TrimSpace(phoneRe.FindString(text))
	if m := linkedInRe.FindStringSubmatch(text); m != nil {
		c.LinkedIn = "https://linkedin.com/in/" + m[1]
	}
	return c
}

package matching

import (
	"fmt"
	"math"
)

const weightTolerance = 1e-9

// Weights configures how much each component contributes to the overall
// score. All fields must lie in [0,1] and add up to 1.
type Weights struct {
	Skills     float64 `mapstructure:"skills" json:"skills"`
	Technology float64 `mapstructure:"technology" json:"technology"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Education  float64 `mapstructure:"education" json:"education"`
}

func DefaultWeights() Weights {
	return Weights{
		Skills:     0.4,
		Technology: 0.3,
		Experience: 0.2,
		Education:  0.1,
	}
}

func (w Weights) Validate() error {
	for _, c := range Categories {
		v := w.of(c)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s weight %v is out of [0,1]", c, v)
		}
	}

	sum := w.Skills + w.Technology + w.Experience + w.Education
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}

	return nil
}

func (w Weights) of(c Category) float64 {
	switch c {
	case CategorySkills:
		return w.Skills
	case CategoryTechnology:
		return w.Technology
	case CategoryExperience:
		return w.Experience
	case CategoryEducation:
		return w.Education
	default:
		return 0
	}
}

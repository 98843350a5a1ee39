package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{name: "default", weights: DefaultWeights()},
		{name: "skills only", weights: Weights{Skills: 1}},
		{name: "even", weights: Weights{Skills: 0.25, Technology: 0.25, Experience: 0.25, Education: 0.25}},
		{name: "sum below one", weights: Weights{Skills: 0.4, Technology: 0.3}, wantErr: true},
		{name: "sum above one", weights: Weights{Skills: 0.9, Technology: 0.3}, wantErr: true},
		{name: "negative", weights: Weights{Skills: 1.2, Technology: -0.2}, wantErr: true},
		{name: "nan", weights: Weights{Skills: math.NaN(), Technology: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServingClassify(t *testing.T) {
	// 5 km at 15 km/h baseline gives an expected 20 minutes.
	tests := []struct {
		name     string
		duration float64
		want     Density
	}{
		{"free flow", 20, Low},
		{"just under medium", 23.9, Low},
		{"medium", 24, Medium},
		{"high", 30, High},
		{"just under jam", 39.9, High},
		{"jam", 40, Jam},
		{"gridlock", 120, Jam},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Serving.Classify(5, tc.duration))
		})
	}
}

func TestClassifyZeroDistance(t *testing.T) {
	assert.Equal(t, Low, Serving.Classify(0, 30))
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[Density]int{Low: 0, Medium: 1, High: 2, Jam: 3}

	prev := rank[Serving.Classify(5, 0)]
	for duration := 0.5; duration <= 120; duration += 0.5 {
		cur := rank[Serving.Classify(5, duration)]
		assert.GreaterOrEqual(t, cur, prev, "tier decreased at duration %.1f", duration)
		prev = cur
	}
}

func TestPipelinePolicyIndependent(t *testing.T) {
	// The pipeline table jumps straight past Low at ratio 1.0.
	assert.Equal(t, Low, Pipeline.ClassifyRatio(0.99))
	assert.Equal(t, Medium, Pipeline.ClassifyRatio(1.1))
	assert.Equal(t, High, Pipeline.ClassifyRatio(1.5))
	assert.Equal(t, Jam, Pipeline.ClassifyRatio(1.7))

	// Same ratios land differently under the serving table.
	assert.Equal(t, Low, Serving.ClassifyRatio(1.1))
	assert.Equal(t, Medium, Serving.ClassifyRatio(1.4))
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curve(pairs ...[2]float64) []CurvePoint {
	out := make([]CurvePoint, len(pairs))
	for i, p := range pairs {
		out[i] = CurvePoint{Distance: float64(i + 1), BPP: p[0], Metric: p[1]}
	}
	return out
}

func TestBDRateHalvedBitrate(t *testing.T) {
	ref := curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}, [2]float64{0.5, 60})
	test := make([]CurvePoint, len(ref))
	for i, p := range ref {
		test[i] = CurvePoint{Distance: p.Distance, BPP: p.BPP / 2, Metric: p.Metric}
	}

	got, ok := BDRate(ref, test)
	require.True(t, ok)
	assert.InDelta(t, -50.0, got, 1e-9)

	got, ok = BDRate(test, ref)
	require.True(t, ok)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestBDRateIdenticalCurves(t *testing.T) {
	ref := curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}, [2]float64{0.5, 60})

	got, ok := BDRate(ref, ref)
	require.True(t, ok)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestBDRatePartialOverlap(t *testing.T) {
	ref := curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}, [2]float64{0.5, 60})
	// Same rates shifted up by 5 quality points
	test := curve([2]float64{4, 95}, [2]float64{2, 85}, [2]float64{1, 75}, [2]float64{0.5, 65})

	got, ok := BDRate(ref, test)
	require.True(t, ok)
	assert.Less(t, got, 0.0, "higher quality at same rate should save bits")
}

func TestBDRateUnusable(t *testing.T) {
	four := curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}, [2]float64{0.5, 60})

	tests := []struct {
		name string
		ref  []CurvePoint
		test []CurvePoint
	}{
		{
			name: "too few points",
			ref:  four,
			test: curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}),
		},
		{
			name: "non-positive bpp dropped",
			ref:  four,
			test: curve([2]float64{4, 90}, [2]float64{2, 80}, [2]float64{1, 70}, [2]float64{0, 60}),
		},
		{
			name: "disjoint quality",
			ref:  four,
			test: curve([2]float64{4, 30}, [2]float64{2, 20}, [2]float64{1, 10}, [2]float64{0.5, 5}),
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := BDRate(tt.ref, tt.test)
			assert.False(t, ok)
		})
	}
}

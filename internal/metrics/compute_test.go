package metrics

import (
	"math"
	"testing"
)

func TestMeanAndPopulationStdDev(t *testing.T) {
	values := []float64{50, 70, 90}

	mean := Mean(values)
	if mean != 70 {
		t.Errorf("expected mean 70, got %v", mean)
	}

	// sqrt(((20^2)*2)/3) = 16.3299...
	sd := PopulationStdDev(values, mean)
	if math.Abs(sd-16.32993161855452) > 1e-9 {
		t.Errorf("expected population stddev 16.3299, got %v", sd)
	}

	if Mean(nil) != 0 || PopulationStdDev(nil, 0) != 0 {
		t.Errorf("empty input must yield 0")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		p    float64
		want float64
	}{
		{0.0, 1},
		{0.5, 3},
		{0.25, 2},
		{0.9, 4.6},
		{1.0, 5},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if Percentile(nil, 0.5) != 0 {
		t.Errorf("empty percentile must be 0")
	}
	if Percentile([]float64{7}, 0.9) != 7 {
		t.Errorf("single-value percentile must be that value")
	}
}

func TestSortedCopy_DoesNotMutate(t *testing.T) {
	in := []float64{3, 1, 2}
	out := SortedCopy(in)
	if in[0] != 3 || out[0] != 1 {
		t.Errorf("SortedCopy mutated input or did not sort: in=%v out=%v", in, out)
	}
}

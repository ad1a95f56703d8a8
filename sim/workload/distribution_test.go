package workload

import (
	"math"
	"math/rand"
	"testing"
)

func sampleMean(t *testing.T, s Sampler, n int) float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	sum := 0.0
	for i := 0; i < n; i++ {
		v := s.Sample(rng)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d = %v, want a finite non-negative duration", i, v)
		}
		sum += v
	}
	return sum / float64(n)
}

func TestSamplers_MeanMatchesParam(t *testing.T) {
	tests := []struct {
		kind string
		mean float64
		cv   float64
	}{
		{Exponential, 2, 0},
		{"", 5, 0},
		{Gamma, 5, 2},
		{Gamma, 5, 0.5},
		{Weibull, 2, 0.5},
		{Weibull, 2, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, err := NewSampler(tt.kind, tt.mean, tt.cv)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(s.Mean()-tt.mean)/tt.mean > 1e-9 {
				t.Errorf("Mean() = %v, want %v", s.Mean(), tt.mean)
			}
			got := sampleMean(t, s, 50000)
			if math.Abs(got-tt.mean)/tt.mean > 0.05 {
				t.Errorf("%s sample mean = %.3f, want ≈ %.3f (within 5%%)", tt.kind, got, tt.mean)
			}
		})
	}
}

func TestExponentialSampler_AlwaysPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := &ExponentialSampler{mean: 0.001}
	for i := 0; i < 100000; i++ {
		if v := s.Sample(rng); v <= 0 {
			t.Fatalf("sample %d = %v, want > 0", i, v)
		}
	}
}

func TestConstantSampler_IgnoresRNG(t *testing.T) {
	s, err := NewSampler(Constant, 3.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Sample(nil); got != 3.5 {
		t.Errorf("Sample = %v, want 3.5", got)
	}
}

func TestGammaSampler_HighCVIsBursty(t *testing.T) {
	// GIVEN gamma samplers with CV 0.5 and CV 3 and the same mean
	low, _ := NewSampler(Gamma, 1, 0.5)
	high, _ := NewSampler(Gamma, 1, 3)

	cv := func(s Sampler) float64 {
		rng := rand.New(rand.NewSource(7))
		n := 50000
		vals := make([]float64, n)
		sum := 0.0
		for i := range vals {
			vals[i] = s.Sample(rng)
			sum += vals[i]
		}
		mean := sum / float64(n)
		ss := 0.0
		for _, v := range vals {
			ss += (v - mean) * (v - mean)
		}
		return math.Sqrt(ss/float64(n-1)) / mean
	}

	// THEN the empirical CVs land near their targets
	if got := cv(low); math.Abs(got-0.5) > 0.05 {
		t.Errorf("CV 0.5 sampler: empirical CV %.3f", got)
	}
	if got := cv(high); got < 2 {
		t.Errorf("CV 3 sampler: empirical CV %.3f, want well above 2", got)
	}
}

func TestWeibullShapeFromCV_RoundTrips(t *testing.T) {
	for _, target := range []float64{0.3, 0.5, 1, 2} {
		k := weibullShapeFromCV(target)
		if got := weibullCV(k); math.Abs(got-target) > 0.01 {
			t.Errorf("weibullCV(weibullShapeFromCV(%v)) = %v", target, got)
		}
	}
}

func TestNewSampler_InvalidInput_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		kind string
		mean float64
	}{
		{"zero mean", Exponential, 0},
		{"negative mean", Constant, -1},
		{"NaN mean", Gamma, math.NaN()},
		{"infinite mean", Weibull, math.Inf(1)},
		{"unknown type", "pareto", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSampler(tt.kind, tt.mean, 1); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidDistributions_MatchesNewSampler(t *testing.T) {
	for kind := range ValidDistributions {
		if _, err := NewSampler(kind, 1, 1); err != nil {
			t.Errorf("%q is listed as valid but NewSampler rejects it: %v", kind, err)
		}
	}
}

// Package workload provides the random duration samplers that drive customer
// arrivals and teller service times.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution names accepted by NewSampler.
const (
	Exponential = "exponential"
	Constant    = "constant"
	Gamma       = "gamma"
	Weibull     = "weibull"
)

// ValidDistributions is the set of recognized distribution names.
// Empty string means the default, exponential.
var ValidDistributions = map[string]bool{"": true, Exponential: true, Constant: true, Gamma: true, Weibull: true}

// Sampler draws non-negative durations in simulated time units.
type Sampler interface {
	// Sample returns the next duration. All samplers draw from the rng they are
	// handed, never from global state.
	Sample(rng *rand.Rand) float64
	// Mean returns the expected value of Sample.
	Mean() float64
}

// ExponentialSampler draws memoryless durations (CV=1).
// The result is strictly positive.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

func (s *ExponentialSampler) Mean() float64 { return s.mean }

// ConstantSampler always returns the same duration (CV=0).
// Used for deterministic scenarios and tests.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return s.value
}

func (s *ConstantSampler) Mean() float64 { return s.value }

// GammaSampler draws Gamma-distributed durations.
// CV > 1 produces bursty arrivals or heavy-tailed service.
type GammaSampler struct {
	shape float64 // 1/CV²
	rate  float64 // 1/(mean * CV²)
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return distuv.Gamma{Alpha: s.shape, Beta: s.rate, Src: rng}.Rand()
}

func (s *GammaSampler) Mean() float64 { return s.shape / s.rate }

// WeibullSampler draws Weibull-distributed durations.
type WeibullSampler struct {
	k      float64 // shape
	lambda float64 // scale
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	return distuv.Weibull{K: s.k, Lambda: s.lambda, Src: rng}.Rand()
}

func (s *WeibullSampler) Mean() float64 {
	return distuv.Weibull{K: s.k, Lambda: s.lambda}.Mean()
}

// NewSampler creates a Sampler for the named distribution with the given mean.
// cv is the coefficient of variation and is only read by gamma and weibull;
// values <= 0 fall back to 1.
func NewSampler(kind string, mean, cv float64) (Sampler, error) {
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("distribution mean must be a positive finite number, got %v", mean)
	}
	if cv <= 0 {
		cv = 1.0
	}
	switch kind {
	case "", Exponential:
		return &ExponentialSampler{mean: mean}, nil

	case Constant:
		return &ConstantSampler{value: mean}, nil

	case Gamma:
		// shape = 1/CV², scale = mean * CV²
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to exponential", shape, cv)
			return &ExponentialSampler{mean: mean}, nil
		}
		return &GammaSampler{shape: shape, rate: 1 / (mean * cv * cv)}, nil

	case Weibull:
		k := weibullShapeFromCV(cv)
		// scale = mean / Γ(1 + 1/k)
		return &WeibullSampler{k: k, lambda: mean / math.Gamma(1.0+1.0/k)}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", kind)
	}
}

// weibullShapeFromCV returns the Weibull shape k whose coefficient of
// variation is within 0.001 of targetCV. CV falls as k grows, so the search
// halves the bracket [0.1, 100] until it is close enough.
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	k := (lo + hi) / 2
	for range 100 {
		diff := weibullCV(k) - targetCV
		if math.Abs(diff) < 0.001 {
			return k
		}
		if diff > 0 {
			lo = k
		} else {
			hi = k
		}
		k = (lo + hi) / 2
	}
	logrus.Warnf("Weibull shape search did not reach CV=%.3f; using k=%.3f", targetCV, k)
	return k
}

// weibullCV is StdDev/Mean of a Weibull with shape k. The scale cancels out.
func weibullCV(k float64) float64 {
	w := distuv.Weibull{K: k, Lambda: 1}
	return w.StdDev() / w.Mean()
}

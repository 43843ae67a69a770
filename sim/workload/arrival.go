package workload

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates the gaps between two arrivals on the line.
type ArrivalSampler interface {
	// SampleGap returns the next inter-arrival gap in microseconds.
	// Always returns a positive value (>= 1).
	SampleGap(rng *rand.Rand) int64
}

// UniformSampler draws gaps uniformly from [min, max] µs.
type UniformSampler struct {
	min int64
	max int64
}

func (s *UniformSampler) SampleGap(rng *rand.Rand) int64 {
	gap := s.min
	if s.max > s.min {
		gap += rng.Int63n(s.max - s.min + 1)
	}
	return floorGap(gap)
}

// PoissonSampler generates exponentially-distributed gaps (CV=1).
type PoissonSampler struct {
	rateMicros float64 // arrivals per microsecond
}

func (s *PoissonSampler) SampleGap(rng *rand.Rand) int64 {
	return floorGap(int64(rng.ExpFloat64() / s.rateMicros))
}

// ConstantSampler emits one arrival every interval µs. It never consumes randomness.
type ConstantSampler struct {
	interval int64
}

func (s *ConstantSampler) SampleGap(_ *rand.Rand) int64 {
	return floorGap(s.interval)
}

// floorGap keeps the arrival clock strictly increasing.
func floorGap(gap int64) int64 {
	if gap < 1 {
		return 1
	}
	return gap
}

func micros(d time.Duration) int64 {
	return d.Microseconds()
}

// NewArrivalSampler creates an ArrivalSampler from a validated spec.
func NewArrivalSampler(spec ArrivalSpec) ArrivalSampler {
	switch spec.Process {
	case ProcessUniform:
		return &UniformSampler{min: micros(spec.MinInterval), max: micros(spec.MaxInterval)}

	case ProcessPoisson:
		mean := float64(micros(spec.Interval))
		// Defensive floor: avoid division by zero
		if mean < 1 {
			mean = 1
		}
		return &PoissonSampler{rateMicros: 1.0 / mean}

	case ProcessConstant:
		return &ConstantSampler{interval: micros(spec.Interval)}

	default:
		// Validated before reaching here; defensive fallback
		logrus.Warnf("unknown arrival process %q; using uniform gaps", spec.Process)
		return &UniformSampler{min: micros(spec.MinInterval), max: micros(spec.MaxInterval)}
	}
}

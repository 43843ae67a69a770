package sim

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles belt ticks against the wall clock.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewRealtimePacer returns a Pacer that releases one tick per tickPeriod (µs)
// of simulated time, divided by speed. A speed of 0 means real time.
func NewRealtimePacer(tickPeriod int64, speed float64) Pacer {
	if speed <= 0 {
		speed = 1
	}
	interval := time.Duration(float64(tickPeriod) * float64(time.Microsecond) / speed)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

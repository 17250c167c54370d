package params

import (
	"errors"
	"math"
)

// Animate writes the time-driven parameters for elapsed seconds t. Every
// value is written even when an earlier write fails.
func Animate(r *Registry, t float64) error {
	var errs []error
	set := func(name string, v float64) {
		if _, err := r.Set(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	set(PlaneSeed, t/5)
	set(PlaneScale, 2+math.Sin(t/4)*0.8)
	set(PlanePinch, 0.5+math.Cos(t/6)*0.2)
	set(BlobSeed, t/10)
	return errors.Join(errs...)
}

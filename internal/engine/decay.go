package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	DecayModeNone        = "none"
	DecayModeExponential = "exponential"

	defaultDecayFloor = 0.1
)

// DecayFunc maps elapsed time since the last update to a factor in (0,1].
// The factor scales the stored vector's contribution in the weighted average.
type DecayFunc func(elapsed time.Duration) float64

// NoDecay keeps history at full strength regardless of age.
func NoDecay(time.Duration) float64 {
	return 1.0
}

// NewExponentialDecay halves the stored vector's influence every halfLife,
// never dropping below floor so an entity's history never fully vanishes.
func NewExponentialDecay(halfLife time.Duration, floor float64) DecayFunc {
	return func(elapsed time.Duration) float64 {
		if elapsed <= 0 {
			return 1.0
		}
		factor := math.Exp2(-elapsed.Seconds() / halfLife.Seconds())
		if factor < floor {
			return floor
		}
		return factor
	}
}

// NewDecay builds the decay function from configuration. Mode "none" is the
// default: decay factor 1 for any age.
func NewDecay(mode string, halfLife time.Duration, floor float64) (DecayFunc, error) {
	switch mode {
	case "", DecayModeNone:
		return NoDecay, nil
	case DecayModeExponential:
		if halfLife <= 0 {
			return nil, fmt.Errorf("exponential decay requires a positive half life, got %v", halfLife)
		}
		if floor <= 0 || floor > 1 {
			floor = defaultDecayFloor
		}
		return NewExponentialDecay(halfLife, floor), nil
	default:
		return nil, fmt.Errorf("unsupported decay mode: %s", mode)
	}
}

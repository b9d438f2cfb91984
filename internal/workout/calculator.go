package workout

import (
	"fmt"
	"math"
)

const (
	metersInKm    = 1000
	minutesInHour = 60
)

// Profile holds the constants of a workout kind. Coefficient meaning differs
// per kind, see Calories.
type Profile struct {
	StepLength float64
	Coeff1     float64
	Coeff2     float64
}

const (
	strideLength = 0.65
	strokeLength = 1.38

	runningSpeedMultiplier = 18
	runningSpeedShift      = 20

	walkingWeightMultiplier = 0.035
	walkingSpeedMultiplier  = 0.029

	swimmingSpeedShift       = 1.1
	swimmingWeightMultiplier = 2
)

// ProfileOf returns the constants for k. ok is false for an unresolved kind.
func ProfileOf(k Kind) (p Profile, ok bool) {
	switch k {
	case Running:
		return Profile{StepLength: strideLength, Coeff1: runningSpeedMultiplier, Coeff2: runningSpeedShift}, true
	case SportsWalking:
		return Profile{StepLength: strideLength, Coeff1: walkingWeightMultiplier, Coeff2: walkingSpeedMultiplier}, true
	case Swimming:
		return Profile{StepLength: strokeLength, Coeff1: swimmingSpeedShift, Coeff2: swimmingWeightMultiplier}, true
	default:
		return Profile{}, false
	}
}

func (w Workout) profile() Profile {
	p, ok := ProfileOf(w.Kind)
	if !ok {
		panic(fmt.Sprintf("workout: no profile for kind %d", int(w.Kind)))
	}
	return p
}

// Distance returns the covered distance in km.
func (w Workout) Distance() float64 {
	return float64(w.Action) * w.profile().StepLength / metersInKm
}

// MeanSpeed returns the average speed in km/h. Swimming derives it from the
// pool length and lap count rather than from strokes.
func (w Workout) MeanSpeed() float64 {
	if w.Kind == Swimming {
		return w.LengthPool * float64(w.CountPool) / metersInKm / w.Duration
	}
	return w.Distance() / w.Duration
}

// Calories returns the energy spent in kcal. It panics for a workout whose
// kind was never resolved.
func (w Workout) Calories() float64 {
	p := w.profile()
	speed := w.MeanSpeed()

	switch w.Kind {
	case Running:
		return (p.Coeff1*speed - p.Coeff2) * w.Weight / metersInKm * w.Duration * minutesInHour
	case SportsWalking:
		// floor division of speed^2 by height in cm is kept as-is
		return (p.Coeff1*w.Weight + math.Floor(speed*speed/w.Height)*p.Coeff2*w.Weight) * w.Duration * minutesInHour
	case Swimming:
		return (speed + p.Coeff1) * (p.Coeff2 * w.Weight)
	default:
		panic(fmt.Sprintf("workout: no calorie formula for kind %d", int(w.Kind)))
	}
}

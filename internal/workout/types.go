package workout

// Kind identifies the activity a workout record belongs to.
// The zero value is not a valid kind.
type Kind int

const (
	Running Kind = iota + 1
	SportsWalking
	Swimming
)

// String returns the display name used in reports.
func (k Kind) String() string {
	switch k {
	case Running:
		return "Running"
	case SportsWalking:
		return "SportsWalking"
	case Swimming:
		return "Swimming"
	default:
		return "Unknown"
	}
}

// Code is the short workout type tag sent by the sensors.
type Code string

const (
	CodeRunning  Code = "RUN"
	CodeWalking  Code = "WLK"
	CodeSwimming Code = "SWM"
)

// Workout holds the raw readings of a single training session.
// Height is only meaningful for SportsWalking, LengthPool and CountPool only
// for Swimming.
type Workout struct {
	Kind       Kind
	Action     int
	Duration   float64
	Weight     float64
	Height     float64
	LengthPool float64
	CountPool  int
}

// Package is a single sensor reading: a workout code and the positional
// values for that code.
type Package struct {
	Code   Code  `yaml:"code" json:"code"`
	Values []any `yaml:"values" json:"values"`
}

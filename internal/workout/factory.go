package workout

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// fields lists the positional value names accepted for each code.
var fields = map[Code][]string{
	CodeRunning:  {"action", "duration", "weight"},
	CodeWalking:  {"action", "duration", "weight", "height"},
	CodeSwimming: {"action", "duration", "weight", "length_pool", "count_pool"},
}

var kinds = map[Code]Kind{
	CodeRunning:  Running,
	CodeWalking:  SportsWalking,
	CodeSwimming: Swimming,
}

// KindOf resolves a workout code.
func KindOf(code Code) (Kind, error) {
	k, ok := kinds[code]
	if !ok {
		return 0, &UnknownCodeError{Code: code}
	}
	return k, nil
}

// Fields returns the positional field names expected for code.
func Fields(code Code) ([]string, error) {
	names, ok := fields[code]
	if !ok {
		return nil, &UnknownCodeError{Code: code}
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// Read builds a workout from a sensor package. Values may be any Go numeric
// type or json.Number; anything else is reported as ErrMalformedValues.
func Read(pkg Package) (Workout, error) {
	code := pkg.Code
	names, ok := fields[code]
	if !ok {
		return Workout{}, &UnknownCodeError{Code: code}
	}
	if len(pkg.Values) != len(names) {
		return Workout{}, fmt.Errorf("%w: %s expects %d values (%s), got %d",
			ErrMalformedValues, code, len(names), strings.Join(names, ", "), len(pkg.Values))
	}

	values := make([]float64, len(pkg.Values))
	for i, raw := range pkg.Values {
		v, err := toFloat(raw)
		if err != nil {
			return Workout{}, fmt.Errorf("%w: %s %s: %v", ErrMalformedValues, code, names[i], err)
		}
		values[i] = v
	}

	return New(code, values)
}

// New builds a workout from already numeric positional values.
func New(code Code, values []float64) (Workout, error) {
	kind, err := KindOf(code)
	if err != nil {
		return Workout{}, err
	}
	names := fields[code]
	if len(values) != len(names) {
		return Workout{}, fmt.Errorf("%w: %s expects %d values, got %d",
			ErrMalformedValues, code, len(names), len(values))
	}

	action, err := wholeNumber(names[0], values[0])
	if err != nil {
		return Workout{}, err
	}

	w := Workout{
		Kind:     kind,
		Action:   action,
		Duration: values[1],
		Weight:   values[2],
	}

	switch kind {
	case SportsWalking:
		w.Height = values[3]
	case Swimming:
		w.LengthPool = values[3]
		if w.CountPool, err = wholeNumber(names[4], values[4]); err != nil {
			return Workout{}, err
		}
	}

	return w, nil
}

// DefaultPackages returns the sample readings processed when no input is configured.
func DefaultPackages() []Package {
	return []Package{
		{Code: CodeSwimming, Values: []any{720, 1, 80, 25, 40}},
		{Code: CodeRunning, Values: []any{15000, 1, 75}},
		{Code: CodeWalking, Values: []any{9000, 1, 75, 180}},
	}
}

func wholeNumber(name string, v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %v", ErrMalformedValues, name, v)
	}
	// float64(math.MaxInt) rounds up to 2^63, which no longer fits in an int
	if v >= math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("%w: %s is out of range, got %v", ErrMalformedValues, name, v)
	}
	return int(v), nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v.String())
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("non-numeric value %v (%T)", v, v)
	}
}

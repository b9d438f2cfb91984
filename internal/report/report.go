// Package report renders computed workout quantities as the tracker's summary line.
package report

import (
	"fmt"

	"github.com/eugenenazirov/fitness-tracker/internal/workout"
)

// Message is the summary of one workout.
type Message struct {
	TrainingType string
	Duration     float64
	Distance     float64
	Speed        float64
	Calories     float64
}

// Summarize computes the reported quantities of w.
func Summarize(w workout.Workout) Message {
	return Message{
		TrainingType: w.Kind.String(),
		Duration:     w.Duration,
		Distance:     w.Distance(),
		Speed:        w.MeanSpeed(),
		Calories:     w.Calories(),
	}
}

// String formats every quantity with exactly three decimals.
func (m Message) String() string {
	return fmt.Sprintf(
		"Тип тренировки: %s; Длительность: %.3f ч.; Дистанция: %.3f км; Ср. скорость: %.3f км/ч; Потрачено ккал: %.3f.",
		m.TrainingType, m.Duration, m.Distance, m.Speed, m.Calories,
	)
}

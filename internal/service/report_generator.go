package service

import (
	"fmt"

	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
	"github.com/sxroads/hypertrophy/internal/domain/workout"
)

// ReportGenerator produces the prose summary stored on a WeeklyReport. It is
// a first-class interface so a future generator backed by an external agent
// can be swapped in without touching the callers.
type ReportGenerator interface {
	Generate(metrics *weeklymetrics.WeeklyMetrics, workouts []*workout.Workout) string
}

// TemplateReportGenerator produces a deterministic plain-text summary from a
// week's metrics, with no external dependency.
type TemplateReportGenerator struct{}

// NewTemplateReportGenerator creates a new TemplateReportGenerator.
func NewTemplateReportGenerator() *TemplateReportGenerator {
	return &TemplateReportGenerator{}
}

// Generate implements ReportGenerator.
func (g *TemplateReportGenerator) Generate(metrics *weeklymetrics.WeeklyMetrics, workouts []*workout.Workout) string {
	if len(workouts) == 0 {
		return "No workouts this week. Get moving!"
	}

	totalWorkouts := len(workouts)
	var totalVolume float64
	var exercisesCount int
	if metrics != nil {
		totalVolume = metrics.TotalVolume
		exercisesCount = metrics.ExercisesCount
	}

	avgVolume := totalVolume / float64(totalWorkouts)

	var note string
	switch {
	case totalWorkouts >= 4:
		note = "excellent consistency"
	case totalWorkouts >= 2:
		note = "good effort"
	default:
		note = "increase frequency"
	}

	return fmt.Sprintf(
		"This week: %d workout(s), %.1f total volume across %d exercise(s), averaging %.1f volume per workout. %s.",
		totalWorkouts, totalVolume, exercisesCount, avgVolume, note,
	)
}

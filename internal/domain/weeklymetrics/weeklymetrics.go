// Package weeklymetrics provides domain logic for the WeeklyMetrics
// projection: per-user, per-ISO-week totals computed by the Weekly
// Aggregator. This package contains pure business logic with no database
// dependencies, making it testable in isolation.
package weeklymetrics

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// Validation errors.
var (
	ErrUserIDRequired    = errors.New("user_id is required")
	ErrWeekStartRequired = errors.New("week_start is required")
)

// WeeklyMetrics is one user's aggregated totals for one ISO week.
type WeeklyMetrics struct {
	ID             string
	UserID         string
	WeekStart      time.Time
	TotalWorkouts  int
	TotalVolume    float64
	ExercisesCount int
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// WeekStart returns the Monday (ISO weekday 1) of the week containing t, as
// a date-only value at midnight in t's location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	t = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}

// WeekEnd returns the last day (Sunday) of the ISO week that weekStart opens.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// NewWeeklyMetricsInput contains the input for constructing a new
// WeeklyMetrics row.
type NewWeeklyMetricsInput struct {
	ID             string
	UserID         string
	WeekStart      time.Time
	TotalWorkouts  int
	TotalVolume    float64
	ExercisesCount int
}

// NewWeeklyMetrics validates input and constructs a WeeklyMetrics value.
func NewWeeklyMetrics(input NewWeeklyMetricsInput) (*WeeklyMetrics, *ValidationResult) {
	result := NewValidationResult()

	if strings.TrimSpace(input.ID) == "" {
		result.AddError(errors.New("id is required"))
	}
	if strings.TrimSpace(input.UserID) == "" {
		result.AddError(ErrUserIDRequired)
	}
	if input.WeekStart.IsZero() {
		result.AddError(ErrWeekStartRequired)
	}

	if !result.Valid {
		return nil, result
	}

	return &WeeklyMetrics{
		ID:             input.ID,
		UserID:         input.UserID,
		WeekStart:      input.WeekStart,
		TotalWorkouts:  input.TotalWorkouts,
		TotalVolume:    input.TotalVolume,
		ExercisesCount: input.ExercisesCount,
	}, result
}

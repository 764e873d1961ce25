// Package weeklyreport provides domain logic for the WeeklyReport entity.
// The report text itself is opaque to the core (produced by the Report
// Generator); this package only models the envelope and its identity rules.
package weeklyreport

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// Validation errors.
var (
	ErrUserIDRequired     = errors.New("user_id is required")
	ErrWeekStartRequired  = errors.New("week_start is required")
	ErrReportTextRequired = errors.New("report_text is required")
)

// WeeklyReport is a user's stored report for one ISO week.
type WeeklyReport struct {
	ID          string
	UserID      string
	WeekStart   time.Time
	ReportText  string
	GeneratedAt time.Time
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// NewWeeklyReportInput contains the input for constructing a new
// WeeklyReport row.
type NewWeeklyReportInput struct {
	ID         string
	UserID     string
	WeekStart  time.Time
	ReportText string
}

// NewWeeklyReport validates input and constructs a WeeklyReport with
// GeneratedAt set to now.
func NewWeeklyReport(input NewWeeklyReportInput) (*WeeklyReport, *ValidationResult) {
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
	if strings.TrimSpace(input.ReportText) == "" {
		result.AddError(ErrReportTextRequired)
	}

	if !result.Valid {
		return nil, result
	}

	return &WeeklyReport{
		ID:          input.ID,
		UserID:      input.UserID,
		WeekStart:   input.WeekStart,
		ReportText:  input.ReportText,
		GeneratedAt: time.Now(),
	}, result
}

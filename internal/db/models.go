package db

import "database/sql"

// User mirrors a row of the users table.
type User struct {
	UserID       string
	Email        sql.NullString
	PasswordHash sql.NullString
	IsAnonymous  bool
	Gender       sql.NullString
	Age          sql.NullInt64
	CreatedAt    string
}

// Event mirrors a row of the events table.
type Event struct {
	EventID        string
	EventType      string
	Payload        string
	UserID         string
	DeviceID       string
	SequenceNumber int64
	CorrelationID  sql.NullString
	CreatedAt      string
}

// Exercise mirrors a row of the exercises table.
type Exercise struct {
	ExerciseID     string
	Name           string
	MuscleCategory string
	CreatedAt      string
}

// WorkoutProjection mirrors a row of the workouts_projection table.
type WorkoutProjection struct {
	WorkoutID string
	UserID    string
	StartedAt string
	EndedAt   sql.NullString
	Status    string
}

// SetProjection mirrors a row of the sets_projection table.
type SetProjection struct {
	SetID       string
	WorkoutID   string
	ExerciseID  string
	Reps        sql.NullInt64
	Weight      sql.NullFloat64
	CompletedAt string
}

// WeeklyMetric mirrors a row of the weekly_metrics table.
type WeeklyMetric struct {
	ID             string
	UserID         string
	WeekStart      string
	TotalWorkouts  int64
	TotalVolume    float64
	ExercisesCount int64
}

// WeeklyReport mirrors a row of the weekly_reports table.
type WeeklyReport struct {
	ID          string
	UserID      string
	WeekStart   string
	ReportText  string
	GeneratedAt string
}

// Package exercise provides the domain representation of the fixed exercise
// catalog. The catalog itself is seeded data (loaded by a schema migration);
// this package only models the read-only entity, never its mutation.
package exercise

import "time"

// Exercise is one entry of the fixed, seeded exercise catalog.
type Exercise struct {
	ExerciseID     string
	Name           string
	MuscleCategory string
	CreatedAt      time.Time
}

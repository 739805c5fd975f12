package engine

import (
	"time"

	"github.com/tartampluch/go-triangles/internal/chart"
)

// ChartEntry is a contact whose birth date has been turned into a chart.
type ChartEntry struct {
	// UID is a unique identifier (hash) used for stability in lists.
	UID string `json:"uid"`

	// Name is the display name (Formatted Name or Structured Name).
	Name string `json:"name"`

	// DateOfBirth is the parsed BDAY value.
	DateOfBirth time.Time `json:"date_of_birth"`

	// NextOccurrence is the next birthday on or after today.
	NextOccurrence time.Time `json:"next_occurrence"`

	// AgeNext is the age the person will turn at NextOccurrence.
	AgeNext int `json:"age_next"`

	// Chart is evaluated from DateOfBirth with a zero-based month.
	Chart chart.Chart `json:"chart"`
}

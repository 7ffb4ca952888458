package models

import "time"

// AlignmentState is a read-only snapshot of an alignment session.
type AlignmentState struct {
	Shift   float64 // seconds applied to every event 2 trace
	Pick    float64 // seconds on the reference trace's own axis; valid only if HasPick
	HasPick bool
}

// OutputRecord is the relative-time correspondence emitted at the end of a session.
type OutputRecord struct {
	ID             string
	Event1         string
	Event2         string
	ReferenceTime  time.Time // reference start + pick
	ShiftedTime    time.Time // target start + pick + shift
	Station        string
	Phase          string
	CCValue        float64 // operator annotation, never computed
	TimeDifference float64 // shifted - reference, seconds
}

package dto

import "time"

type StartInput struct {
	SubjectID int64
	// Minutes may be fractional; it is truncated toward zero.
	Minutes float64
}

type SessionOutput struct {
	ID             int64
	SubjectID      int64
	SubjectName    string
	StartTime      time.Time
	PlannedEndTime time.Time
	EndTime        *time.Time
	DurationMin    *int
	StartDay       string
	PlannedMinutes int
}

type LastStartOutput struct {
	SubjectID   int64
	SubjectName string
	Minutes     int
	Available   bool
}

type ResetOutput struct {
	Deleted     int64
	EndedActive bool
}

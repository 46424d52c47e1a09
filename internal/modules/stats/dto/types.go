package dto

const (
	ScopeToday = "today"
	ScopeTotal = "total"
	ScopeDay   = "day"
)

type ReportInput struct {
	// Day is only read by ByDay.
	Day             string
	IncludeArchived bool
}

type RowOutput struct {
	SubjectID int64
	Name      string
	Minutes   int
	Archived  bool
}

type ReportOutput struct {
	Scope        string
	Day          string
	Rows         []RowOutput
	TotalMinutes int
	TotalHours   float64
}

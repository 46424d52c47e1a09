package dto

type AddInput struct {
	Name string
}

type RenameInput struct {
	ID   int64
	Name string
}

type DeleteInput struct {
	ID int64
	// Policy is keep, cascade or archive; empty uses the configured default.
	Policy string
}

type SubjectOutput struct {
	ID       int64
	Name     string
	Archived bool
}

type DeleteOutput struct {
	ID              int64
	Name            string
	Policy          string
	SessionsDeleted int64
}

type EnsureDefaultOutput struct {
	Subject SubjectOutput
	Created bool
}

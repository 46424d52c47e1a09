package dto

type ExportOutput struct {
	Payload  []byte
	FileName string
	Subjects int
	Sessions int
}

type ImportInput struct {
	Payload []byte
}

type ImportOutput struct {
	Subjects int
	Sessions int
}

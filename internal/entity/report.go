package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// TriageReport is the exportable summary of a session
type TriageReport struct {
	SessionID   string          `json:"session_id"`
	Status      TriageStatus    `json:"status"`
	Answers     []AnswerDTO     `json:"answers"`
	Emergency   *EmergencyAlert `json:"emergency,omitempty"`
	Diagnosis   *Diagnosis      `json:"diagnosis,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

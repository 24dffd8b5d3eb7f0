package entity

import (
	"time"
)

type TriageStatus string

// Triage status represents the current state of the intake/diagnosis workflow
const (
	TriageStatusInProgress TriageStatus = "IN_PROGRESS" // Questionnaire is being answered
	TriageStatusCompleted  TriageStatus = "COMPLETED"   // All questions answered, ready for diagnosis
	TriageStatusDiagnosing TriageStatus = "DIAGNOSING"  // Waiting for the diagnosis backend
	TriageStatusDiagnosed  TriageStatus = "DIAGNOSED"   // Diagnosis stored
	TriageStatusError      TriageStatus = "ERROR"       // Diagnosis failed
	TriageStatusCanceled   TriageStatus = "CANCELED"    // Session cancelled by user
)

// IsFinal reports whether no further answers can be accepted
func (s TriageStatus) IsFinal() bool {
	return s == TriageStatusCanceled
}

// CanDiagnose reports whether a diagnosis may be requested in this status
func (s TriageStatus) CanDiagnose() bool {
	switch s {
	case TriageStatusCompleted, TriageStatusDiagnosed, TriageStatusError:
		return true
	default:
		return false
	}
}

// QuestionnaireState is the persisted questionnaire cursor and answers
type QuestionnaireState struct {
	CurrentIndex int               `json:"current_index"`
	Responses    map[string]string `json:"responses"`
	IsPetPatient bool              `json:"is_pet_patient"`
	PetType      string            `json:"pet_type,omitempty"`
	Injected     []string          `json:"injected,omitempty"`
}

// EmergencyAlert is the most urgent emergency seen during a session
type EmergencyAlert struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Category   string    `json:"category"`
	Priority   int       `json:"priority"`
	QuestionID string    `json:"question_id"`
	DetectedAt time.Time `json:"detected_at"`
}

type TriageSession struct {
	ID            string             `json:"session_id"`
	Status        TriageStatus       `json:"status"`
	Questionnaire QuestionnaireState `json:"questionnaire"`
	Emergency     *EmergencyAlert    `json:"emergency,omitempty"`
	Diagnosis     *Diagnosis         `json:"diagnosis,omitempty"`
	Error         *string            `json:"error,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

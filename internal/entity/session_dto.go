package entity

import (
	"time"
)

type SubmitAnswerRequest struct {
	Answer    string `json:"answer"`
	IsSkipped bool   `json:"is_skipped"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type QuestionDTO struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

type ProgressDTO struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// TurnResult is returned after every questionnaire turn
type TurnResult struct {
	SessionID       string          `json:"session_id"`
	Status          TriageStatus    `json:"status"`
	NextPrompt      *string         `json:"next_prompt"`
	Question        *QuestionDTO    `json:"question,omitempty"`
	ValidationError *string         `json:"validation_error"`
	Progress        ProgressDTO     `json:"progress"`
	IsPetPatient    bool            `json:"is_pet_patient"`
	PetType         string          `json:"pet_type,omitempty"`
	Emergency       *EmergencyAlert `json:"emergency"`
	Complete        bool            `json:"complete"`
}

type AnswerDTO struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

type SessionDTO struct {
	ID           string          `json:"session_id"`
	Status       TriageStatus    `json:"status"`
	Question     *QuestionDTO    `json:"question,omitempty"`
	Progress     ProgressDTO     `json:"progress"`
	Answers      []AnswerDTO     `json:"answers"`
	IsPetPatient bool            `json:"is_pet_patient"`
	PetType      string          `json:"pet_type,omitempty"`
	Emergency    *EmergencyAlert `json:"emergency,omitempty"`
	Diagnosis    *Diagnosis      `json:"diagnosis,omitempty"`
	Error        *string         `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EmergencyCheckRequest keeps text untyped: anything other than a string is checked as "no match"
type EmergencyCheckRequest struct {
	Text any `json:"text"`
}

type EmergencyCheckResponse struct {
	HasEmergency bool            `json:"has_emergency"`
	Priority     *int            `json:"priority"`
	Emergency    *EmergencyMatch `json:"emergency"`
}

type EmergencyMatch struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

type AddKeywordRequest struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
	Type     string `json:"type,omitempty"`
	Message  string `json:"message,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

type EmergencyCategoryDTO struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Keywords []string `json:"keywords"`
}

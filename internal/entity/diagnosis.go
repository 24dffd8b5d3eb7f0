package entity

import (
	"encoding/json"
)

const (
	UrgencyRoutine = "routine"
	UrgencySoon    = "soon"
	UrgencyUrgent  = "urgent"
)

// DiagnosisRequest is sent to the diagnosis backend. Answers to injected
// follow-up questions are flattened into the top-level object.
type DiagnosisRequest struct {
	Age            int               `json:"age"`
	Gender         string            `json:"gender"`
	Symptoms       string            `json:"symptoms"`
	Duration       string            `json:"duration"`
	Severity       int               `json:"severity"`
	MedicalHistory string            `json:"medical_history"`
	Extra          map[string]string `json:"-"`
}

func (r DiagnosisRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6+len(r.Extra))
	for k, v := range r.Extra {
		out[k] = v
	}
	out["age"] = r.Age
	out["gender"] = r.Gender
	out["symptoms"] = r.Symptoms
	out["duration"] = r.Duration
	out["severity"] = r.Severity
	out["medical_history"] = r.MedicalHistory
	return json.Marshal(out)
}

type ConfidenceScores struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

type Cause struct {
	Cause       string  `json:"cause"`
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
	Urgency     string  `json:"urgency"`
	Specialty   string  `json:"specialty"`
}

// Diagnosis is the differential diagnosis returned by the backend
type Diagnosis struct {
	Answer              string           `json:"answer"`
	ConfidenceScores    ConfidenceScores `json:"confidence_scores"`
	EstimatedCost       float64          `json:"estimated_cost"`
	Causes              []Cause          `json:"causes,omitempty"`
	RedFlags            []string         `json:"red_flags,omitempty"`
	AdditionalQuestions []string         `json:"additional_questions,omitempty"`
	RecommendedTests    []string         `json:"recommended_tests,omitempty"`
	Urgency             string           `json:"urgency,omitempty"`
}

// AssessUrgency derives the overall urgency: any red flag is urgent,
// otherwise the most urgent cause wins.
func (d *Diagnosis) AssessUrgency() string {
	if len(d.RedFlags) > 0 {
		return UrgencyUrgent
	}
	level := UrgencyRoutine
	for _, c := range d.Causes {
		switch c.Urgency {
		case UrgencyUrgent:
			return UrgencyUrgent
		case UrgencySoon:
			level = UrgencySoon
		}
	}
	return level
}

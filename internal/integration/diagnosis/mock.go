package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxLikelyConditions = 3

type conditionRule struct {
	condition string
	keywords  []string
}

var conditionRules = []conditionRule{
	{condition: "Viral or bacterial infection", keywords: []string{"fever", "temperature", "hot", "chills"}},
	{condition: "Upper respiratory infection", keywords: []string{"cough", "throat", "sore throat"}},
	{condition: "Headache disorder", keywords: []string{"headache", "head pain", "migraine"}},
	{condition: "Gastrointestinal issue", keywords: []string{"stomach", "nausea", "vomit", "diarrhea"}},
	{condition: "Musculoskeletal condition", keywords: []string{"pain", "ache", "hurt", "sore"}},
}

const generalCondition = "General medical condition"

var (
	urgentKeywords = []string{
		"severe", "intense", "unbearable", "emergency", "can't breathe",
		"chest pain", "difficulty breathing", "confused", "dizzy",
		"bleeding", "unconscious", "seizure",
	}
	soonKeywords = []string{
		"worsening", "getting worse", "high fever", "persistent",
		"several days", "week", "not improving",
	}
)

// MockConnector answers with a keyword-based preliminary assessment and never calls out
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Diagnose(ctx context.Context, req *entity.DiagnosisRequest) (*entity.Diagnosis, error) {
	ctxzap.Info(ctx, "[MOCK] generating fallback diagnosis")

	conditions := LikelyConditions(req.Symptoms)

	return &entity.Diagnosis{
		Answer: fallbackAnswer(req, conditions),
		ConfidenceScores: entity.ConfidenceScores{
			High:   0.6,
			Medium: 0.3,
			Low:    0.1,
		},
		EstimatedCost: 0,
		Urgency:       AssessSymptomUrgency(req.Symptoms + " " + req.Duration),
	}, nil
}

func (m *MockConnector) HealthCheck(ctx context.Context) error {
	return nil
}

// LikelyConditions maps symptom keywords to broad condition groups, at most three
func LikelyConditions(symptoms string) []string {
	lower := strings.ToLower(symptoms)

	var out []string
	for _, rule := range conditionRules {
		if containsAny(lower, rule.keywords) {
			out = append(out, rule.condition)
		}
	}
	if len(out) == 0 {
		out = append(out, generalCondition)
	}
	if len(out) > maxLikelyConditions {
		out = out[:maxLikelyConditions]
	}
	return out
}

// AssessSymptomUrgency classifies free text as urgent, soon or routine
func AssessSymptomUrgency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, urgentKeywords):
		return entity.UrgencyUrgent
	case containsAny(lower, soonKeywords):
		return entity.UrgencySoon
	default:
		return entity.UrgencyRoutine
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func fallbackAnswer(req *entity.DiagnosisRequest, conditions []string) string {
	var sb strings.Builder

	sb.WriteString("# Medical Assessment\n\n")
	sb.WriteString(fmt.Sprintf("**Symptoms Analyzed:** %s\n\n", req.Symptoms))
	sb.WriteString("**Patient Information:**\n")
	sb.WriteString(fmt.Sprintf("- Age: %d years\n", req.Age))
	sb.WriteString(fmt.Sprintf("- Gender: %s\n\n", req.Gender))

	sb.WriteString("## Preliminary Assessment\n\n")
	sb.WriteString("Based on your symptoms, the following conditions may be relevant:\n\n")
	for _, c := range conditions {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}

	sb.WriteString("\n## General Recommendations\n\n")
	sb.WriteString("1. **Monitor symptoms** and note any changes\n")
	sb.WriteString("2. **Stay hydrated** with plenty of fluids\n")
	sb.WriteString("3. **Get adequate rest** to support recovery\n")
	sb.WriteString("4. **Consult a healthcare provider** for proper evaluation\n")
	sb.WriteString("5. **Seek immediate care** if symptoms worsen significantly\n\n")
	sb.WriteString("⚠️ **Note:** This is a basic assessment. For accurate diagnosis and treatment, please consult with a qualified healthcare professional.")

	return sb.String()
}

package render

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestRenderQuestion(t *testing.T) {
	q := &entity.QuestionDTO{ID: "gender", Text: "What is your gender?"}
	out := RenderQuestion(q, entity.ProgressDTO{Current: 1, Total: 6, Percentage: 17})

	assert.Contains(t, out, "Question 2 of 6")
	assert.Contains(t, out, "[▓░░░░░░░░░] 17%")
	assert.Contains(t, out, "What is your gender?")
	assert.Empty(t, RenderQuestion(nil, entity.ProgressDTO{}))
}

func TestRenderProgressBar_Clamps(t *testing.T) {
	assert.Equal(t, "[▓▓▓▓▓▓▓▓▓▓] 100%", renderProgressBar(140))
	assert.Equal(t, "[░░░░░░░░░░] 0%", renderProgressBar(-5))
}

func TestRenderDiagnosis(t *testing.T) {
	out := RenderDiagnosis(&entity.Diagnosis{
		Answer:   "Possible migraine.",
		Urgency:  entity.UrgencySoon,
		RedFlags: []string{"Sudden worst headache"},
	})

	assert.Contains(t, out, "Possible migraine.")
	assert.Contains(t, out, "see a doctor soon")
	assert.Contains(t, out, "• Sudden worst headache")
}

func TestRenderEmergency(t *testing.T) {
	out := RenderEmergency(&entity.EmergencyAlert{Type: "CARDIAC EMERGENCY", Message: "Call 911 immediately."})
	assert.Equal(t, "🚨 CARDIAC EMERGENCY\n\nCall 911 immediately.", out)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ErrGeneric},
		{fmt.Errorf("load: %w", entity.ErrSessionNotFound), ErrSessionNotFound},
		{entity.ErrSessionCancelled, ErrSessionCancelled},
		{entity.ErrSessionNotComplete, ErrNotComplete},
		{entity.ErrSessionBusy, MsgDiagnosisBusy},
		{fmt.Errorf("diagnose: %w", entity.ErrDiagnosisUnavailable), ErrDiagnosisUnavailable},
		{context.DeadlineExceeded, ErrTimeout},
		{errors.New("boom"), ErrGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), "%v", tt.err)
	}
}

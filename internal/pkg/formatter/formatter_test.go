package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *entity.TriageReport {
	return &entity.TriageReport{
		SessionID: "3f1c0a2e-9d6b-4a57-8e0f-2b1d5c7a9e41",
		Status:    entity.TriageStatusDiagnosed,
		Answers: []entity.AnswerDTO{
			{QuestionID: "age", Question: "What is your age?", Answer: "29"},
			{QuestionID: "symptoms", Question: "What brings you here today?", Answer: "severe chest pain"},
		},
		Emergency: &entity.EmergencyAlert{
			Type:     "CARDIAC EMERGENCY",
			Message:  "🚨 Call 911 immediately.",
			Priority: 1,
		},
		Diagnosis: &entity.Diagnosis{
			Answer:   "Symptoms are consistent with acute coronary syndrome.",
			Urgency:  entity.UrgencyUrgent,
			Causes:   []entity.Cause{{Cause: "Angina", Value: 70, Specialty: "Cardiology", Urgency: "urgent"}},
			RedFlags: []string{"Pain radiating to the arm"},
		},
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleReport())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Symptom Triage Report")
	assert.Contains(t, md, "- **Status:** DIAGNOSED")
	assert.Contains(t, md, "- **Generated:** 2026-03-01 10:30 UTC")
	assert.Contains(t, md, "## Emergency Alert")
	assert.Contains(t, md, "- **Type:** CARDIAC EMERGENCY")
	assert.Contains(t, md, "- **What is your age?:** 29")
	assert.Contains(t, md, "## Assessment")
	assert.Contains(t, md, "- Angina (70%) [Cardiology, urgency: urgent]")
	assert.Contains(t, md, "## Red Flags")
	assert.NotContains(t, md, "## Recommended Tests")
}

func TestMarkdownFormatter_NoDiagnosis(t *testing.T) {
	r := sampleReport()
	r.Diagnosis = nil
	r.Emergency = nil

	out, err := NewMarkdownFormatter().Format(r)
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "## Patient Responses")
	assert.NotContains(t, md, "## Emergency Alert")
	assert.NotContains(t, md, "## Assessment")
}

func TestPDFFormatter(t *testing.T) {
	f := NewPDFFormatter()
	out, err := f.Format(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", f.ContentType())
}

func TestStripSymbols(t *testing.T) {
	assert.Equal(t, "Call 911", stripSymbols("🚨 Call 911"))
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatPDF, ".pdf"},
		{entity.FormatDOCX, ".docx"},
	}
	for _, tt := range tests {
		f, err := factory.Create(tt.format)
		require.NoError(t, err)
		assert.Equal(t, tt.ext, f.FileExtension())
	}

	_, err := factory.Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

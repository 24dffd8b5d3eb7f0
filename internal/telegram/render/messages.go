package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/triage-backend/internal/entity"
)

const (
	MsgWelcome = `👋 Hi! I will ask a few short questions about how you feel and suggest what to do next.

⚠️ This is not a medical diagnosis. If you think it is an emergency, call 911 (or your local emergency number) right away.`

	MsgHelp = `🤖 Commands:

/start - Start a new assessment
/skip - Skip the current question
/back - Return to the previous question
/reset - Start the questionnaire over
/diagnose - Get the assessment once all questions are answered
/cancel - Cancel the current assessment
/help - Show this help

Just type your answer to the current question.`

	MsgQuestion = `❓ Question %d of %d
%s

%s`

	MsgValidation = `⚠️ %s`

	MsgQuestionnaireComplete = `✅ Thank you, all questions are answered.

Press "Get assessment" or send /diagnose.`

	MsgDiagnosing = `⏳ Analysing your answers. This can take up to a minute...`

	MsgDiagnosisResult = `🩺 Assessment

%s`

	MsgUrgency = `Urgency: %s`

	MsgChooseReport   = `📥 Download the full report:`
	MsgRetryDiagnosis = `Your answers are saved. You can try again.`

	MsgConfirmCancel = `⚠️ Cancel this assessment? Your answers will be discarded.`
	MsgConfirmReset  = `⚠️ Start over? Your answers will be discarded.`
	MsgContinue      = `👌 Let's continue.`

	MsgSessionFinished = `👋 Assessment cancelled.

To start a new one, press /start`

	MsgNoActiveSession = `No active assessment. Use /start`
	MsgDiagnosisBusy   = `⏳ The assessment is still being prepared, please wait.`
	MsgAlreadyComplete = `All questions are answered. Send /diagnose for the assessment or /reset to start over.`
	MsgTextOnly        = `Please answer with a text message.`
	MsgUnknownCommand  = `❌ Unknown command. Use /help`

	ErrGeneric              = `❌ Something went wrong. Please try again or press /start`
	ErrSessionNotFound      = `❌ Assessment not found. Start a new one with /start`
	ErrSessionCancelled     = `❌ This assessment was cancelled. Start a new one with /start`
	ErrInvalidState         = `❌ This is not possible right now. Use /help`
	ErrNotComplete          = `❌ Please answer the remaining questions first.`
	ErrNetworkIssue         = `❌ Connection problem. Please try again later.`
	ErrDiagnosisUnavailable = `❌ The assessment service is unavailable right now. Please try again in a few minutes.`
	ErrTimeout              = `❌ The operation took too long. Please try again.`
	ErrInvalidInput         = `❌ This answer is too long. Please shorten it.`
)

// RenderQuestion formats the current question with progress
func RenderQuestion(q *entity.QuestionDTO, progress entity.ProgressDTO) string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf(MsgQuestion, progress.Current+1, progress.Total, renderProgressBar(progress.Percentage), q.Text)
}

// RenderEmergency formats an emergency alert
func RenderEmergency(alert *entity.EmergencyAlert) string {
	if alert == nil {
		return ""
	}
	return fmt.Sprintf("🚨 %s\n\n%s", alert.Type, alert.Message)
}

// RenderDiagnosis formats the diagnosis summary sent to the chat
func RenderDiagnosis(d *entity.Diagnosis) string {
	if d == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(MsgDiagnosisResult, strings.TrimSpace(d.Answer)))

	if d.Urgency != "" {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(MsgUrgency, urgencyLabel(d.Urgency)))
	}

	if len(d.RedFlags) > 0 {
		sb.WriteString("\n\n🚩 Red flags:\n")
		for _, f := range d.RedFlags {
			sb.WriteString("• " + f + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func urgencyLabel(urgency string) string {
	switch urgency {
	case entity.UrgencyUrgent:
		return "🔴 urgent, seek care today"
	case entity.UrgencySoon:
		return "🟠 see a doctor soon"
	case entity.UrgencyRoutine:
		return "🟢 routine"
	default:
		return urgency
	}
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(percentage int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	filled := percentage / 10
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)

	return fmt.Sprintf("[%s] %d%%", bar, percentage)
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrSessionCancelled):
		return ErrSessionCancelled
	case errors.Is(err, entity.ErrSessionNotComplete):
		return ErrNotComplete
	case errors.Is(err, entity.ErrSessionCompleted):
		return MsgAlreadyComplete
	case errors.Is(err, entity.ErrSessionBusy):
		return MsgDiagnosisBusy
	case errors.Is(err, entity.ErrInvalidSessionStatus), errors.Is(err, entity.ErrNoResult):
		return ErrInvalidState
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		return ErrInvalidInput
	case errors.Is(err, entity.ErrDiagnosisUnavailable):
		return ErrDiagnosisUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}

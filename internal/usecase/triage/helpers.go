package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/questionnaire"
)

// Defaults used by the diagnosis backend when an answer is skipped or unreadable
const (
	defaultAge            = 30
	defaultGender         = "unknown"
	defaultDuration       = "recent"
	defaultSeverity       = 5
	defaultMedicalHistory = "none"
)

func (uc *TriageUsecase) loadSession(
	ctx context.Context, sessionID string,
) (*entity.TriageSession, *questionnaire.Session, error) {
	session, err := uc.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	qs, err := questionnaire.Restore(uc.bank, toQuestionnaireState(session.Questionnaire))
	if err != nil {
		return nil, nil, fmt.Errorf("restore questionnaire: %w", err)
	}

	return session, qs, nil
}

func (uc *TriageUsecase) save(ctx context.Context, session *entity.TriageSession, qs *questionnaire.Session) error {
	session.Questionnaire = toEntityQuestionnaireState(qs.Snapshot())
	session.UpdatedAt = uc.now()

	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// checkAnswerable allows answers and skips only while the questionnaire is open
func checkAnswerable(status entity.TriageStatus) error {
	switch status {
	case entity.TriageStatusInProgress:
		return nil
	case entity.TriageStatusCanceled:
		return entity.ErrSessionCancelled
	case entity.TriageStatusDiagnosing:
		return entity.ErrSessionBusy
	default:
		return fmt.Errorf("%w: status %s", entity.ErrSessionCompleted, status)
	}
}

// checkEditable allows back and reset in every status except cancelled and diagnosing
func checkEditable(status entity.TriageStatus) error {
	switch status {
	case entity.TriageStatusCanceled:
		return entity.ErrSessionCancelled
	case entity.TriageStatusDiagnosing:
		return entity.ErrSessionBusy
	default:
		return nil
	}
}

// reopen returns a finished session to IN_PROGRESS, dropping results tied to the old answers
func reopen(session *entity.TriageSession) {
	session.Status = entity.TriageStatusInProgress
	session.Diagnosis = nil
	session.Error = nil
}

// mostUrgent keeps the lower priority number; the earlier alert wins a tie
func mostUrgent(current, next *entity.EmergencyAlert) *entity.EmergencyAlert {
	if current == nil || next.Priority < current.Priority {
		return next
	}
	return current
}

func buildTurnResult(
	session *entity.TriageSession,
	qs *questionnaire.Session,
	validationErr *string,
	alert *entity.EmergencyAlert,
) *entity.TurnResult {
	result := &entity.TurnResult{
		SessionID:       session.ID,
		Status:          session.Status,
		ValidationError: validationErr,
		Progress:        toProgressDTO(qs.Progress()),
		IsPetPatient:    qs.IsPetPatient(),
		PetType:         qs.PetType(),
		Emergency:       alert,
		Complete:        qs.IsComplete(),
	}

	if q, ok := qs.CurrentQuestion(); ok {
		prompt := q.Text
		result.NextPrompt = &prompt
		result.Question = toQuestionDTO(q)
	}

	return result
}

// BuildDiagnosisRequest maps stored answers onto the backend request.
// Answers to questions outside the base set are passed through as extra fields.
func BuildDiagnosisRequest(responses map[string]string, bank *questionnaire.Bank) *entity.DiagnosisRequest {
	answer := func(id string) (string, bool) {
		v, ok := responses[id]
		v = strings.TrimSpace(v)
		if !ok || v == "" || v == questionnaire.SkippedAnswer {
			return "", false
		}
		return v, true
	}

	req := &entity.DiagnosisRequest{
		Age:            defaultAge,
		Gender:         defaultGender,
		Duration:       defaultDuration,
		Severity:       defaultSeverity,
		MedicalHistory: defaultMedicalHistory,
	}

	if v, ok := answer(questionnaire.AgeQuestionID); ok {
		if n, ok := questionnaire.FirstNumber(v); ok {
			req.Age = n
		}
	}
	if v, ok := answer(questionnaire.GenderQuestionID); ok {
		req.Gender = v
	}
	if v, ok := answer(questionnaire.SymptomsQuestionID); ok {
		req.Symptoms = v
	}
	if v, ok := answer(questionnaire.DurationQuestionID); ok {
		req.Duration = v
	}
	if v, ok := answer(questionnaire.SeverityQuestionID); ok {
		if n, ok := questionnaire.FirstNumber(v); ok {
			req.Severity = n
		}
	}
	if v, ok := answer(questionnaire.MedicalHistoryQuestionID); ok {
		req.MedicalHistory = v
	}

	base := make(map[string]bool, len(bank.Base))
	for _, q := range bank.Base {
		base[q.ID] = true
	}
	for id, v := range responses {
		if base[id] {
			continue
		}
		if req.Extra == nil {
			req.Extra = make(map[string]string)
		}
		req.Extra[id] = strings.TrimSpace(v)
	}

	return req
}

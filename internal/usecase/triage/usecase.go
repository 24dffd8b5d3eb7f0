package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/triage-backend/internal/emergency"
	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/pkg/keylock"
	"github.com/futig/triage-backend/internal/questionnaire"
	"github.com/futig/triage-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// diagnosisStaleAfter frees sessions left in DIAGNOSING by a crashed process
const diagnosisStaleAfter = 10 * time.Minute

// TriageUsecase drives questionnaire turns, emergency checks and diagnosis for stored sessions
type TriageUsecase struct {
	sessionRepo   repository.SessionRepository
	diagnosisConn DiagnosisConnector
	detector      *emergency.Detector
	bank          *questionnaire.Bank
	locks         *keylock.KeyLock
	now           func() time.Time
	logger        *zap.Logger
}

func NewUsecase(
	sessionRepo repository.SessionRepository,
	diagnosisConn DiagnosisConnector,
	detector *emergency.Detector,
	bank *questionnaire.Bank,
	logger *zap.Logger,
) *TriageUsecase {
	if bank == nil {
		bank = questionnaire.DefaultBank()
	}
	return &TriageUsecase{
		sessionRepo:   sessionRepo,
		diagnosisConn: diagnosisConn,
		detector:      detector,
		bank:          bank,
		locks:         keylock.New(),
		now:           time.Now,
		logger:        logger,
	}
}

// StartSession creates a session and returns the first question
func (uc *TriageUsecase) StartSession(ctx context.Context) (*entity.TurnResult, error) {
	qs := questionnaire.NewSession(uc.bank)
	now := uc.now()

	session := &entity.TriageSession{
		ID:            uuid.New().String(),
		Status:        entity.TriageStatusInProgress,
		Questionnaire: toEntityQuestionnaireState(qs.Snapshot()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "triage session started", zap.String("session_id", session.ID))

	return buildTurnResult(session, qs, nil, nil), nil
}

// SubmitAnswer validates and records an answer to the current question.
// An invalid answer is reported in the result, not as an error.
func (uc *TriageUsecase) SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.TurnResult, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkAnswerable(session.Status); err != nil {
		return nil, err
	}

	question, ok := qs.CurrentQuestion()
	if !ok {
		return nil, fmt.Errorf("%w: no question pending", entity.ErrSessionCompleted)
	}

	validation := qs.ValidateResponse(answer)
	if !validation.Valid {
		if validation.Redirect != nil {
			ctxzap.Info(ctx, "non-human patient detected",
				zap.String("question_id", question.ID),
				zap.String("pet_type", validation.Redirect.Species),
			)
		}
		if err := uc.save(ctx, session, qs); err != nil {
			return nil, err
		}
		msg := validation.Error
		return buildTurnResult(session, qs, &msg, nil), nil
	}

	var alert *entity.EmergencyAlert
	if question.ID == questionnaire.SymptomsQuestionID {
		alert = toEmergencyAlert(uc.detector.Detect(answer), question.ID, uc.now())
		if alert != nil {
			ctxzap.Warn(ctx, "emergency detected",
				zap.String("type", alert.Type),
				zap.String("category", alert.Category),
				zap.Int("priority", alert.Priority),
			)
			session.Emergency = mostUrgent(session.Emergency, alert)
		}
	}

	qs.AddResponse(answer)
	if qs.IsComplete() {
		session.Status = entity.TriageStatusCompleted
		ctxzap.Info(ctx, "questionnaire completed")
	}

	if err := uc.save(ctx, session, qs); err != nil {
		return nil, err
	}

	return buildTurnResult(session, qs, nil, alert), nil
}

// SkipQuestion records the skipped placeholder for the current question
func (uc *TriageUsecase) SkipQuestion(ctx context.Context, sessionID string) (*entity.TurnResult, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkAnswerable(session.Status); err != nil {
		return nil, err
	}

	if qs.IsComplete() {
		return nil, fmt.Errorf("%w: no question pending", entity.ErrSessionCompleted)
	}

	qs.SkipQuestion()
	if qs.IsComplete() {
		session.Status = entity.TriageStatusCompleted
	}

	if err := uc.save(ctx, session, qs); err != nil {
		return nil, err
	}

	return buildTurnResult(session, qs, nil, nil), nil
}

// PreviousQuestion moves the cursor back one step. Going back from a finished
// questionnaire reopens it and drops any stored diagnosis.
func (uc *TriageUsecase) PreviousQuestion(ctx context.Context, sessionID string) (*entity.TurnResult, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkEditable(session.Status); err != nil {
		return nil, err
	}

	qs.GoToPreviousQuestion()
	reopen(session)

	if err := uc.save(ctx, session, qs); err != nil {
		return nil, err
	}

	return buildTurnResult(session, qs, nil, nil), nil
}

// ResetSession clears answers, flags, emergency and diagnosis and starts over
func (uc *TriageUsecase) ResetSession(ctx context.Context, sessionID string) (*entity.TurnResult, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkEditable(session.Status); err != nil {
		return nil, err
	}

	qs.Reset()
	reopen(session)
	session.Emergency = nil

	if err := uc.save(ctx, session, qs); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "triage session reset")

	return buildTurnResult(session, qs, nil, nil), nil
}

func (uc *TriageUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dto := &entity.SessionDTO{
		ID:           session.ID,
		Status:       session.Status,
		Progress:     toProgressDTO(qs.Progress()),
		Answers:      toAnswerDTOs(qs.OrderedResponses()),
		IsPetPatient: qs.IsPetPatient(),
		PetType:      qs.PetType(),
		Emergency:    session.Emergency,
		Diagnosis:    session.Diagnosis,
		Error:        session.Error,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	if q, ok := qs.CurrentQuestion(); ok {
		dto.Question = toQuestionDTO(q)
	}

	return dto, nil
}

func (uc *TriageUsecase) CancelSession(ctx context.Context, sessionID string) error {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, err := uc.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if session.Status == entity.TriageStatusCanceled {
		return entity.ErrSessionCancelled
	}

	session.Status = entity.TriageStatusCanceled
	session.UpdatedAt = uc.now()

	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	ctxzap.Info(ctx, "triage session cancelled")
	return nil
}

// Diagnose sends the collected answers to the diagnosis backend and stores the outcome.
// The session lock is not held while the backend is working.
func (uc *TriageUsecase) Diagnose(ctx context.Context, sessionID string) (*entity.Diagnosis, error) {
	req, err := uc.beginDiagnosis(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	diagnosis, diagErr := uc.diagnosisConn.Diagnose(ctx, req)

	// The outcome is persisted even if the caller went away meanwhile
	return uc.finishDiagnosis(context.WithoutCancel(ctx), sessionID, diagnosis, diagErr)
}

func (uc *TriageUsecase) beginDiagnosis(ctx context.Context, sessionID string) (*entity.DiagnosisRequest, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch {
	case session.Status == entity.TriageStatusCanceled:
		return nil, entity.ErrSessionCancelled
	case session.Status == entity.TriageStatusDiagnosing && uc.now().Sub(session.UpdatedAt) < diagnosisStaleAfter:
		return nil, entity.ErrSessionBusy
	case session.Status == entity.TriageStatusDiagnosing:
		ctxzap.Warn(ctx, "taking over stale diagnosis", zap.Time("updated_at", session.UpdatedAt))
	case !session.Status.CanDiagnose():
		return nil, fmt.Errorf("%w: status %s", entity.ErrSessionNotComplete, session.Status)
	}

	session.Status = entity.TriageStatusDiagnosing
	session.Error = nil
	if err := uc.save(ctx, session, qs); err != nil {
		return nil, err
	}

	return BuildDiagnosisRequest(qs.StructuredResponses(), uc.bank), nil
}

func (uc *TriageUsecase) finishDiagnosis(
	ctx context.Context, sessionID string, diagnosis *entity.Diagnosis, diagErr error,
) (*entity.Diagnosis, error) {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	session, err := uc.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status != entity.TriageStatusDiagnosing {
		ctxzap.Warn(ctx, "session changed while diagnosing, discarding result",
			zap.String("status", string(session.Status)),
		)
		if session.Status == entity.TriageStatusCanceled {
			return nil, entity.ErrSessionCancelled
		}
		return nil, fmt.Errorf("%w: status %s", entity.ErrInvalidSessionStatus, session.Status)
	}

	session.UpdatedAt = uc.now()
	if diagErr != nil {
		msg := diagErr.Error()
		session.Status = entity.TriageStatusError
		session.Error = &msg
	} else {
		session.Status = entity.TriageStatusDiagnosed
		session.Diagnosis = diagnosis
	}

	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if diagErr != nil {
		ctxzap.Error(ctx, "diagnosis failed", zap.Error(diagErr))
		return nil, fmt.Errorf("diagnose: %w", diagErr)
	}

	ctxzap.Info(ctx, "diagnosis stored", zap.String("urgency", diagnosis.Urgency))
	return diagnosis, nil
}

// GetReport collects answers, emergency and diagnosis for export
func (uc *TriageUsecase) GetReport(ctx context.Context, sessionID string) (*entity.TriageReport, error) {
	session, qs, err := uc.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !qs.IsComplete() {
		return nil, entity.ErrSessionNotComplete
	}

	return &entity.TriageReport{
		SessionID:   session.ID,
		Status:      session.Status,
		Answers:     toAnswerDTOs(qs.OrderedResponses()),
		Emergency:   session.Emergency,
		Diagnosis:   session.Diagnosis,
		GeneratedAt: uc.now(),
	}, nil
}

// CheckEmergency runs the detector on arbitrary text without touching any session
func (uc *TriageUsecase) CheckEmergency(text string) *entity.EmergencyCheckResponse {
	return uc.CheckEmergencyValue(text)
}

// CheckEmergencyValue is CheckEmergency for decoded JSON. Non-string input is no match.
func (uc *TriageUsecase) CheckEmergencyValue(v any) *entity.EmergencyCheckResponse {
	match := uc.detector.DetectValue(v)

	resp := &entity.EmergencyCheckResponse{
		HasEmergency: match != nil,
		Emergency:    toEmergencyMatch(match),
	}
	if match != nil {
		priority := match.Priority
		resp.Priority = &priority
	}
	return resp
}

func (uc *TriageUsecase) AddEmergencyKeyword(ctx context.Context, req *entity.AddKeywordRequest) error {
	err := uc.detector.AddCustomKeyword(req.Category, req.Keyword, emergency.CategoryDefaults{
		Type:     req.Type,
		Message:  req.Message,
		Priority: req.Priority,
	})
	if err != nil {
		if errors.Is(err, emergency.ErrEmptyKeyword) {
			return fmt.Errorf("%w: %w", entity.ErrInvalidParameter, err)
		}
		return fmt.Errorf("add emergency keyword: %w", err)
	}

	ctxzap.Info(ctx, "emergency keyword added",
		zap.String("category", req.Category),
		zap.String("keyword", req.Keyword),
	)
	return nil
}

func (uc *TriageUsecase) EmergencyCategories() []entity.EmergencyCategoryDTO {
	return toCategoryDTOs(uc.detector.Categories())
}

// HealthCheck reports whether the diagnosis backend answers
func (uc *TriageUsecase) HealthCheck(ctx context.Context) error {
	return uc.diagnosisConn.HealthCheck(ctx)
}

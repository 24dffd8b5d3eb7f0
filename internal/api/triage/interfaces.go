package triage

import (
	"context"

	"github.com/futig/triage-backend/internal/entity"
)

type TriageUsecase interface {
	StartSession(ctx context.Context) (*entity.TurnResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.TurnResult, error)
	SkipQuestion(ctx context.Context, sessionID string) (*entity.TurnResult, error)
	PreviousQuestion(ctx context.Context, sessionID string) (*entity.TurnResult, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.TurnResult, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	CancelSession(ctx context.Context, sessionID string) error
	Diagnose(ctx context.Context, sessionID string) (*entity.Diagnosis, error)
	GetReport(ctx context.Context, sessionID string) (*entity.TriageReport, error)
	HealthCheck(ctx context.Context) error
}

package triage

import (
	"context"

	"github.com/futig/triage-backend/internal/entity"
)

type DiagnosisConnector interface {
	Diagnose(ctx context.Context, req *entity.DiagnosisRequest) (*entity.Diagnosis, error)
	HealthCheck(ctx context.Context) error
}

package emergency

import (
	"context"

	"github.com/futig/triage-backend/internal/entity"
)

type EmergencyUsecase interface {
	CheckEmergencyValue(v any) *entity.EmergencyCheckResponse
	AddEmergencyKeyword(ctx context.Context, req *entity.AddKeywordRequest) error
	EmergencyCategories() []entity.EmergencyCategoryDTO
}

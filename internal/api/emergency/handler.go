package emergency

import (
	"encoding/json"
	"net/http"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/pkg/logger"
	"github.com/futig/triage-backend/internal/pkg/response"
	"github.com/futig/triage-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   EmergencyUsecase
	validator *validator.Validator
}

func NewHandler(usecase EmergencyUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Check handles POST /emergency/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CheckEmergency")

	var req entity.EmergencyCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateEmergencyCheck(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	result := h.usecase.CheckEmergencyValue(req.Text)
	if result.HasEmergency {
		ctxzap.Info(ctx, "emergency detected", zap.String("category", result.Emergency.Category))
	}

	response.Success(w, result)
}

// AddKeyword handles POST /emergency/keywords
func (h *Handler) AddKeyword(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AddEmergencyKeyword")

	var req entity.AddKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateAddKeyword(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.usecase.AddEmergencyKeyword(ctx, &req); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, map[string]string{
		"message": "keyword added",
	})
}

// Categories handles GET /emergency/categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.usecase.EmergencyCategories())
}

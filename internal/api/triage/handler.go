package triage

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/pkg/formatter"
	"github.com/futig/triage-backend/internal/pkg/logger"
	"github.com/futig/triage-backend/internal/pkg/response"
	"github.com/futig/triage-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase    TriageUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func NewHandler(usecase TriageUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:    usecase,
		validator:  validator,
		formatters: formatter.NewFactory(),
	}
}

// sessionIDMiddleware rejects malformed ids and tags the request logger with the session
func (h *Handler) sessionIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		ctx := r.Context()

		if err := h.validator.ValidateSessionID(sessionID); err != nil {
			response.Error(ctx, w, http.StatusBadRequest, "invalid session id", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(logger.WithSession(ctx, sessionID)))
	})
}

// StartSession handles POST /triage-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	result, err := h.usecase.StartSession(ctx)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Created(w, result)
}

// GetSession handles GET /triage-session/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetSession")

	session, err := h.usecase.GetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// SubmitAnswer handles POST /triage-session/{id}/answer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SubmitAnswer")
	sessionID := chi.URLParam(r, "id")

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Debug(ctx, "submitting answer",
		zap.Bool("is_skipped", req.IsSkipped),
		zap.Int("answer_length", len(req.Answer)),
	)

	var (
		result *entity.TurnResult
		err    error
	)
	if req.IsSkipped {
		result, err = h.usecase.SkipQuestion(ctx, sessionID)
	} else {
		result, err = h.usecase.SubmitAnswer(ctx, sessionID, req.Answer)
	}
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// PreviousQuestion handles POST /triage-session/{id}/back
func (h *Handler) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PreviousQuestion")

	result, err := h.usecase.PreviousQuestion(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// ResetSession handles POST /triage-session/{id}/reset
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ResetSession")

	result, err := h.usecase.ResetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// CancelSession handles POST /triage-session/{id}/cancel
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CancelSession")

	if err := h.usecase.CancelSession(ctx, chi.URLParam(r, "id")); err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{
		"message": "session cancelled successfully",
	})
}

// Diagnose handles POST /triage-session/{id}/diagnose
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Diagnose")

	diagnosis, err := h.usecase.Diagnose(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	response.Success(w, diagnosis)
}

// GetReport handles GET /triage-session/{id}/report?format=markdown|pdf|docx
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetReport")
	sessionID := chi.URLParam(r, "id")

	format, err := h.validator.ValidateReportFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid format parameter", err)
		return
	}

	report, err := h.usecase.GetReport(ctx, sessionID)
	if err != nil {
		response.UsecaseError(ctx, w, err)
		return
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		response.Error(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	body, err := fmtr.Format(report)
	if err != nil {
		response.Error(ctx, w, http.StatusInternalServerError, "failed to format report", err)
		return
	}

	ctxzap.Info(ctx, "report generated", zap.String("format", string(format)), zap.Int("bytes", len(body)))

	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"triage-%s%s\"", sessionID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Health handles GET /health. The service stays healthy when only the diagnosis backend is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	backend := "up"
	if err := h.usecase.HealthCheck(ctx); err != nil {
		ctxzap.Warn(ctx, "diagnosis backend health check failed", zap.Error(err))
		backend = "down"
	}

	response.Success(w, map[string]string{
		"status":            "healthy",
		"diagnosis_backend": backend,
	})
}

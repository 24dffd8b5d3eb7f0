package emergency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/triage-backend/internal/config"
	detection "github.com/futig/triage-backend/internal/emergency"
	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/integration/diagnosis"
	"github.com/futig/triage-backend/internal/pkg/validator"
	"github.com/futig/triage-backend/internal/repository"
	"github.com/futig/triage-backend/internal/usecase/triage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsecase struct {
	added *entity.AddKeywordRequest
	err   error
}

func (f *fakeUsecase) CheckEmergencyValue(v any) *entity.EmergencyCheckResponse {
	text, _ := v.(string)
	if !strings.Contains(text, "chest pain") {
		return &entity.EmergencyCheckResponse{}
	}
	p := 1
	return &entity.EmergencyCheckResponse{
		HasEmergency: true,
		Priority:     &p,
		Emergency:    &entity.EmergencyMatch{Type: "CARDIAC EMERGENCY", Category: "cardiac", Priority: 1},
	}
}

func (f *fakeUsecase) AddEmergencyKeyword(ctx context.Context, req *entity.AddKeywordRequest) error {
	f.added = req
	return f.err
}

func (f *fakeUsecase) EmergencyCategories() []entity.EmergencyCategoryDTO {
	return []entity.EmergencyCategoryDTO{{Name: "cardiac", Type: "CARDIAC EMERGENCY", Priority: 1, Keywords: []string{"chest pain"}}}
}

func newTestServer(uc *fakeUsecase) http.Handler {
	r := chi.NewRouter()
	v := validator.NewValidator(config.ValidatorConfig{MaxAnswerLength: 100, MaxKeywordLength: 20})
	RegisterRoutes(r, NewHandler(uc, v))
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestCheck(t *testing.T) {
	h := newTestServer(&fakeUsecase{})

	rec := post(h, "/emergency/check", `{"text":"sudden chest pain"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.EmergencyCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasEmergency)
	require.NotNil(t, resp.Priority)
	assert.Equal(t, 1, *resp.Priority)
	assert.Equal(t, "cardiac", resp.Emergency.Category)

	rec = post(h, "/emergency/check", `{"text":"mild itch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_emergency":false,"priority":null,"emergency":null}`, rec.Body.String())

	rec = post(h, "/emergency/check", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddKeyword(t *testing.T) {
	uc := &fakeUsecase{}
	h := newTestServer(uc)

	rec := post(h, "/emergency/keywords", `{"category":"burns","keyword":"chemical burn","priority":2}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.added)
	assert.Equal(t, "chemical burn", uc.added.Keyword)

	rec = post(h, "/emergency/keywords", `{"category":"burns","keyword":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h, "/emergency/keywords", `{"category":"burns","keyword":"a keyword that is far too long"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddKeyword_UsecaseRejects(t *testing.T) {
	h := newTestServer(&fakeUsecase{err: entity.ErrInvalidParameter})

	rec := post(h, "/emergency/keywords", `{"category":"burns","keyword":"scald"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emergency/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cats []entity.EmergencyCategoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "cardiac", cats[0].Name)
}

func TestCheck_NonStringTextIsNoMatch(t *testing.T) {
	logger := zap.NewNop()
	uc := triage.NewUsecase(
		repository.NewSessionCache(time.Hour, time.Hour, nil),
		diagnosis.NewMockConnector(logger),
		detection.NewDetector(logger),
		nil,
		logger,
	)
	v := validator.NewValidator(config.ValidatorConfig{MaxAnswerLength: 100, MaxKeywordLength: 20})
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, v))

	for _, body := range []string{`{"text":42}`, `{"text":null}`, `{"text":["chest pain"]}`, `{"text":{"t":"stroke"}}`, `{}`} {
		rec := post(r, "/emergency/check", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.JSONEq(t, `{"has_emergency":false,"priority":null,"emergency":null}`, rec.Body.String(), body)
	}

	rec := post(r, "/emergency/check", `{"text":"I think I'm having a stroke"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp entity.EmergencyCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasEmergency)
}

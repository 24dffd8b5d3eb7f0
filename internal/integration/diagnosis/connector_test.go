package diagnosis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/entity"
	pkgRetry "github.com/futig/triage-backend/internal/pkg/retry"
)

func testConfig(url string) config.DiagnosisConnectorConfig {
	return config.DiagnosisConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   url,
		},
		DiagnoseEndpoint: "/api/diagnose",
		HealthEndpoint:   "/health",
		APIKey:           "sk-test",
		Retry: pkgRetry.RetryConfig{
			Attempts: 3,
			Delay:    time.Millisecond,
			MaxDelay: 5 * time.Millisecond,
			Timeout:  5 * time.Second,
		},
	}
}

func sampleRequest() *entity.DiagnosisRequest {
	return &entity.DiagnosisRequest{
		Age:            29,
		Gender:         "female",
		Symptoms:       "itchy rash on forearm",
		Duration:       "1-2 days",
		Severity:       4,
		MedicalHistory: "none",
		Extra:          map[string]string{"skin_location": "left forearm"},
	}
}

func TestConnector_Diagnose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/diagnose", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get(APIKeyHeader))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(29), body["age"])
		assert.Equal(t, "left forearm", body["skin_location"])
		assert.Equal(t, "none", body["medical_history"])

		_ = json.NewEncoder(w).Encode(entity.Diagnosis{
			Answer:           "Contact dermatitis is likely.",
			ConfidenceScores: entity.ConfidenceScores{High: 1},
			Causes: []entity.Cause{
				{Cause: "Contact dermatitis", Value: 75, Urgency: "routine", Specialty: "Dermatology"},
				{Cause: "Eczema", Value: 40, Urgency: "soon", Specialty: "Dermatology"},
			},
		})
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	d, err := c.Diagnose(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Contact dermatitis is likely.", d.Answer)
	require.Len(t, d.Causes, 2)
	assert.Equal(t, entity.UrgencySoon, d.Urgency)
}

func TestConnector_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(entity.Diagnosis{Answer: "ok"})
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	d, err := c.Diagnose(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", d.Answer)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConnector_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(entity.Diagnosis{Answer: "ok"})
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	_, err := c.Diagnose(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	_, err := c.Diagnose(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDiagnosisUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConnector_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	_, err := c.Diagnose(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDiagnosisUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConnector_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestMockConnector_Diagnose(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	req := sampleRequest()
	req.Symptoms = "fever and sore throat with a headache"

	d, err := m.Diagnose(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, d.Answer, "# Medical Assessment")
	assert.Contains(t, d.Answer, "- Viral or bacterial infection")
	assert.Contains(t, d.Answer, "- Upper respiratory infection")
	assert.Contains(t, d.Answer, "- Headache disorder")
	assert.NotContains(t, d.Answer, "Musculoskeletal")
	assert.Equal(t, entity.ConfidenceScores{High: 0.6, Medium: 0.3, Low: 0.1}, d.ConfidenceScores)
}

func TestLikelyConditions(t *testing.T) {
	assert.Equal(t, []string{"General medical condition"}, LikelyConditions("feeling off"))
	assert.Equal(t, []string{"Gastrointestinal issue"}, LikelyConditions("Nausea since lunch"))
}

func TestAssessSymptomUrgency(t *testing.T) {
	assert.Equal(t, entity.UrgencyUrgent, AssessSymptomUrgency("Severe cramps"))
	assert.Equal(t, entity.UrgencySoon, AssessSymptomUrgency("persistent cough"))
	assert.Equal(t, entity.UrgencyRoutine, AssessSymptomUrgency("mild itch"))
}

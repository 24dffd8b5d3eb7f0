package diagnosis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/integration/common"
	pkgRetry "github.com/futig/triage-backend/internal/pkg/retry"
	pkghttp "github.com/futig/triage-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// APIKeyHeader carries the model provider key to the diagnosis backend
const APIKeyHeader = "X-OpenAI-API-Key"

type Connector struct {
	config    config.DiagnosisConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.DiagnosisConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithStaticHeaders(map[string]string{APIKeyHeader: cfg.APIKey}),
		),
		config: cfg,
		logger: logger,
	}
}

// Diagnose sends the collected answers to the diagnosis backend.
// Network errors, 5xx and 429 are retried with exponential backoff.
func (c *Connector) Diagnose(ctx context.Context, req *entity.DiagnosisRequest) (*entity.Diagnosis, error) {
	ctxzap.Info(ctx, "requesting diagnosis",
		zap.Int("age", req.Age),
		zap.Int("severity", req.Severity),
		zap.Int("extra_fields", len(req.Extra)),
	)

	resp, err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable,
		func(ctx context.Context) (*entity.Diagnosis, error) {
			var out entity.Diagnosis
			if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.DiagnoseEndpoint, req, &out); err != nil {
				return nil, err
			}
			return &out, nil
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDiagnosisUnavailable, err)
	}

	if resp.Answer == "" && len(resp.Causes) == 0 {
		return nil, fmt.Errorf("%w: empty diagnosis response", entity.ErrDiagnosisUnavailable)
	}

	if resp.Urgency == "" {
		resp.Urgency = resp.AssessUrgency()
	}

	ctxzap.Info(ctx, "diagnosis received",
		zap.Int("cause_count", len(resp.Causes)),
		zap.Int("red_flag_count", len(resp.RedFlags)),
		zap.String("urgency", resp.Urgency),
	)

	return resp, nil
}

// HealthCheck pings the diagnosis backend once, without retries
func (c *Connector) HealthCheck(ctx context.Context) error {
	if err := c.connector.DoRequest(ctx, http.MethodGet, c.config.HealthEndpoint, nil, nil); err != nil {
		return fmt.Errorf("diagnosis health check: %w", err)
	}
	return nil
}

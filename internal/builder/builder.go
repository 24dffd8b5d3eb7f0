package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/triage-backend/internal/api"
	emergencyapi "github.com/futig/triage-backend/internal/api/emergency"
	triageapi "github.com/futig/triage-backend/internal/api/triage"
	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/emergency"
	"github.com/futig/triage-backend/internal/integration/diagnosis"
	"github.com/futig/triage-backend/internal/pkg/logger"
	"github.com/futig/triage-backend/internal/pkg/validator"
	"github.com/futig/triage-backend/internal/telegram"
	"github.com/futig/triage-backend/internal/usecase/triage"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	store, err := setupStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Repositories initialized")

	triageUC, err := buildTriageUsecase(cfg, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	v := validator.NewValidator(cfg.ValidatorCfg)
	triageHandler := triageapi.NewHandler(triageUC, v)
	emergencyHandler := emergencyapi.NewHandler(triageUC, v)
	log.Info("API handlers initialized")

	router := api.SetupRouter(triageHandler, emergencyHandler, log, api.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	log.Info("HTTP router configured")

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Diagnosis requests may hold the connection for the whole request timeout
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		store:  store,
		logger: log,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (*BotApp, error) {
	ctx := context.Background()

	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	log.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	store, err := setupStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Repositories initialized")

	triageUC, err := buildTriageUsecase(cfg, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, store.telegramState, triageUC, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	log.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &BotApp{
		bot:    bot,
		store:  store,
		logger: log,
	}, nil
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	return cfg, log, nil
}

// buildTriageUsecase wires the detector and the diagnosis connector into the use case
func buildTriageUsecase(cfg *config.Config, store *storage, log *zap.Logger) (*triage.TriageUsecase, error) {
	detector := emergency.NewDetector(log)
	for _, kw := range cfg.EmergencyKeywords {
		err := detector.AddCustomKeyword(kw.Category, kw.Keyword, emergency.CategoryDefaults{
			Type:     kw.Type,
			Message:  kw.Message,
			Priority: kw.Priority,
		})
		if err != nil {
			return nil, fmt.Errorf("register emergency keyword %q: %w", kw.Keyword, err)
		}
	}
	log.Info("Emergency detector initialized",
		zap.Int("custom_keywords", len(cfg.EmergencyKeywords)),
	)

	var diagnosisConnector triage.DiagnosisConnector
	if cfg.EnableMocks {
		log.Info("Using mock diagnosis connector")
		diagnosisConnector = diagnosis.NewMockConnector(log)
	} else {
		log.Info("Using diagnosis backend", zap.String("url", cfg.DiagnosisConnectorCfg.Url))
		diagnosisConnector = diagnosis.NewConnector(cfg.DiagnosisConnectorCfg, log)
	}

	return triage.NewUsecase(store.sessions, diagnosisConnector, detector, nil, log), nil
}

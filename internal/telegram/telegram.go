package telegram

import (
	"context"
	"fmt"

	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/telegram/bot"
	"github.com/futig/triage-backend/internal/telegram/handlers"
	"github.com/futig/triage-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	triageUC handlers.TriageUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, triageUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	if err := registerHandlers(b, logger); err != nil {
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) error {
	flow := b.GetFlow()

	all := []handlers.Handler{
		handlers.NewCallbackHandler(flow),
		handlers.NewAnswerHandler(flow),
		handlers.NewFinishedHandler(flow),
	}
	for _, h := range all {
		if err := b.RegisterHandler(h); err != nil {
			return err
		}
	}

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", len(all)),
	)
	return nil
}

package handlers

import (
	"context"
	"time"

	pkgRetry "github.com/futig/triage-backend/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// criticalSendRetry is replaced in tests
var criticalSendRetry = &pkgRetry.RetryConfig{
	Attempts: 3,
	Delay:    time.Second,
	MaxDelay: 4 * time.Second,
}

// sendCriticalMessage sends a message that must be delivered (emergency alerts).
// Every send error is retried with backoff until the attempts run out or ctx ends.
func sendCriticalMessage(
	ctx context.Context,
	bot BotAPI,
	chatID int64,
	text string,
	markup interface{},
) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := pkgRetry.Do(ctx, criticalSendRetry, nil, func(context.Context) (tgbotapi.Message, error) {
		return bot.Send(msg)
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send critical message after all retries",
			zap.Error(err),
			zap.Uint("attempts", criticalSendRetry.Attempts),
			zap.Int64("chat_id", chatID),
		)
		return 0, err
	}

	return sent.MessageID, nil
}

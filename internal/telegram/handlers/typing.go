package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ChatActionNotifier repeats a chat action ("typing", "upload_document") until stopped
type ChatActionNotifier struct {
	bot      BotAPI
	chatID   int64
	action   string
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewChatActionNotifier creates a new chat action indicator
func NewChatActionNotifier(bot BotAPI, chatID int64, action string, logger *zap.Logger) *ChatActionNotifier {
	return &ChatActionNotifier{
		bot:      bot,
		chatID:   chatID,
		action:   action,
		interval: typingActionInterval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start sends the action immediately and then every interval
func (t *ChatActionNotifier) Start(ctx context.Context) {
	t.send()

	ticker := time.NewTicker(t.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.send()
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (t *ChatActionNotifier) send() {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(t.chatID, t.action)); err != nil {
		t.logger.Warn("failed to send chat action",
			zap.Error(err),
			zap.String("action", t.action),
			zap.Int64("chat_id", t.chatID),
		)
	}
}

// Stop stops sending the chat action
func (t *ChatActionNotifier) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	progressInterval     = 15 * time.Second
	typingActionInterval = 4 * time.Second // Telegram typing expires after 5s
)

// ProgressNotifier sends periodic progress messages and typing indicators while a diagnosis runs
type ProgressNotifier struct {
	bot              BotAPI
	chatID           int64
	progressInterval time.Duration
	typingInterval   time.Duration
	done             chan struct{}
	stopOnce         sync.Once
	messages         []string
}

// NewProgressNotifier creates a new progress notifier
func NewProgressNotifier(bot BotAPI, chatID int64) *ProgressNotifier {
	return &ProgressNotifier{
		bot:              bot,
		chatID:           chatID,
		progressInterval: progressInterval,
		typingInterval:   typingActionInterval,
		done:             make(chan struct{}),
		messages: []string{
			"⏳ Still working on it...",
			"⏳ Reviewing the possible causes...",
			"⏳ Almost done...",
		},
	}
}

// Start begins sending periodic progress messages and typing indicators
func (pn *ProgressNotifier) Start(ctx context.Context) {
	progressTicker := time.NewTicker(pn.progressInterval)
	typingTicker := time.NewTicker(pn.typingInterval)

	pn.sendTypingAction()

	go func() {
		defer progressTicker.Stop()
		defer typingTicker.Stop()

		index := 0
		for {
			select {
			case <-progressTicker.C:
				message := pn.messages[index%len(pn.messages)]
				index++
				_, _ = pn.bot.Send(tgbotapi.NewMessage(pn.chatID, message))

			case <-typingTicker.C:
				pn.sendTypingAction()

			case <-pn.done:
				return

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (pn *ProgressNotifier) sendTypingAction() {
	_, _ = pn.bot.Request(tgbotapi.NewChatAction(pn.chatID, tgbotapi.ChatTyping))
}

// Stop stops sending progress messages and typing indicators
func (pn *ProgressNotifier) Stop() {
	pn.stopOnce.Do(func() {
		close(pn.done)
	})
}

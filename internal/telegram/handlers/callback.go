package handlers

import (
	"context"
	"fmt"

	"github.com/futig/triage-backend/internal/telegram/keyboard"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles all callback button clicks
type CallbackHandler struct {
	BaseHandler
	flow *Flow
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(flow *Flow) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: flow.messageSender,
		},
		flow: flow,
	}
}

// Handle routes callback queries to appropriate actions
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctxzap.Info(ctx, "handling callback",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case keyboard.ActionCommand:
		return h.handleCommand(ctx, msg, data.Value)
	case keyboard.ActionOption:
		return h.flow.AnswerOption(ctx, msg.UserID, msg.ChatID, data.Value)
	case keyboard.ActionConfirm:
		return h.flow.Confirm(ctx, msg.UserID, msg.ChatID, data.Value)
	case keyboard.ActionReport:
		return h.flow.SendReport(ctx, msg.UserID, msg.ChatID, data.Value)
	default:
		ctxzap.Warn(ctx, "unknown callback action",
			zap.String("action", data.Action),
		)
		return fmt.Errorf("unknown action: %s", data.Action)
	}
}

// handleCommand handles buttons that mirror bot commands
func (h *CallbackHandler) handleCommand(ctx context.Context, msg *Message, value string) error {
	return Dispatch(ctx, h.flow, value, msg.UserID, msg.ChatID)
}

// Dispatch runs a command by name, shared by slash commands and buttons
func Dispatch(ctx context.Context, flow *Flow, command string, userID, chatID int64) error {
	switch command {
	case "start":
		return flow.Start(ctx, userID, chatID)
	case "skip":
		return flow.Skip(ctx, userID, chatID)
	case "back":
		return flow.Back(ctx, userID, chatID)
	case "reset":
		return flow.RequestConfirmation(ctx, userID, chatID, ConfirmReset)
	case "cancel":
		return flow.RequestConfirmation(ctx, userID, chatID, ConfirmCancel)
	case "diagnose":
		return flow.Diagnose(ctx, userID, chatID)
	case "help":
		flow.Help(ctx, chatID)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

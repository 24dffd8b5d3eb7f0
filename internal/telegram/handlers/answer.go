package handlers

import (
	"context"
	"strings"

	"github.com/futig/triage-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AnswerHandler handles text while the questionnaire is open
type AnswerHandler struct {
	BaseHandler
	flow *Flow
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(flow *Flow) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAnswering,
			messageSender: flow.messageSender,
		},
		flow: flow,
	}
}

// Handle submits the message text as the answer to the current question
func (h *AnswerHandler) Handle(ctx context.Context, msg *Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.sendMessage(msg.ChatID, render.MsgTextOnly, nil)
		return nil
	}

	ctxzap.Debug(ctx, "processing text answer",
		zap.Int64("user_id", msg.UserID),
		zap.Int("answer_length", len(text)),
	)

	return h.flow.Answer(ctx, msg.UserID, msg.ChatID, text)
}

// FinishedHandler handles text after the last question has been answered
type FinishedHandler struct {
	BaseHandler
}

// NewFinishedHandler creates a new finished-state handler
func NewFinishedHandler(flow *Flow) *FinishedHandler {
	return &FinishedHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateFinished,
			messageSender: flow.messageSender,
		},
	}
}

// Handle reminds the user of the available next steps
func (h *FinishedHandler) Handle(ctx context.Context, msg *Message) error {
	h.sendMessage(msg.ChatID, render.MsgAlreadyComplete, nil)
	return nil
}

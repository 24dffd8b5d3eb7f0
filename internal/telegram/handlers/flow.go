package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/pkg/formatter"
	"github.com/futig/triage-backend/internal/telegram/keyboard"
	"github.com/futig/triage-backend/internal/telegram/render"
	"github.com/futig/triage-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Confirmable destructive actions
const (
	ConfirmCancel   = "cancel"
	ConfirmReset    = "reset"
	ConfirmContinue = "continue"
)

// Flow runs the triage conversation for a chat. Commands, callbacks and text handlers all go through it.
// Use case errors are reported to the chat; only storage failures of the chat state are returned.
type Flow struct {
	BaseHandler
	bot          BotAPI
	stateManager *state.Manager
	triageUC     TriageUsecase
	formatters   *formatter.Factory
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

func NewFlow(
	bot BotAPI,
	stateManager *state.Manager,
	triageUC TriageUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *Flow {
	sender := NewMessageSender(bot, logger)
	return &Flow{
		BaseHandler:  BaseHandler{messageSender: sender},
		bot:          bot,
		stateManager: stateManager,
		triageUC:     triageUC,
		formatters:   formatter.NewFactory(),
		keyboard:     kb,
		logger:       logger,
	}
}

// Welcome shows the intro with the start button
func (f *Flow) Welcome(ctx context.Context, chatID int64) {
	f.sendMessage(chatID, render.MsgWelcome, f.keyboard.StartKeyboard())
}

// Help lists the commands
func (f *Flow) Help(ctx context.Context, chatID int64) {
	f.sendMessage(chatID, render.MsgHelp, nil)
}

// Start creates a triage session and binds the chat to it
func (f *Flow) Start(ctx context.Context, userID, chatID int64) error {
	previous, err := f.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}
	f.messageSender.ClearKeyboard(chatID, previous.LastMessageID)

	res, err := f.triageUC.StartSession(ctx)
	if err != nil {
		f.HandleError(ctx, chatID, err)
		return nil
	}

	if err := f.stateManager.Bind(ctx, userID, chatID, res.SessionID); err != nil {
		return fmt.Errorf("bind chat to session: %w", err)
	}

	ctxzap.Info(ctx, "triage session started from chat",
		zap.String("session_id", res.SessionID),
		zap.Int64("user_id", userID),
	)

	return f.sendTurn(ctx, userID, chatID, res, &state.StateData{})
}

// Answer records text as the answer to the current question
func (f *Flow) Answer(ctx context.Context, userID, chatID int64, text string) error {
	return f.turn(ctx, userID, chatID, func(sessionID string) (*entity.TurnResult, error) {
		return f.triageUC.SubmitAnswer(ctx, sessionID, text)
	})
}

// AnswerOption answers the current question with one of its quick-reply options
func (f *Flow) AnswerOption(ctx context.Context, userID, chatID int64, value string) error {
	sessionID, ok, err := f.activeSession(ctx, userID, chatID)
	if err != nil || !ok {
		return err
	}

	dto, err := f.triageUC.GetSession(ctx, sessionID)
	if err != nil {
		f.HandleError(ctx, chatID, err)
		return nil
	}

	index, err := strconv.Atoi(value)
	if err != nil || dto.Question == nil || index < 0 || index >= len(dto.Question.Options) {
		// Button from an earlier question
		f.sendMessage(chatID, render.ErrInvalidState, nil)
		return nil
	}

	return f.Answer(ctx, userID, chatID, dto.Question.Options[index])
}

// Skip skips the current question
func (f *Flow) Skip(ctx context.Context, userID, chatID int64) error {
	return f.turn(ctx, userID, chatID, func(sessionID string) (*entity.TurnResult, error) {
		return f.triageUC.SkipQuestion(ctx, sessionID)
	})
}

// Back returns to the previous question
func (f *Flow) Back(ctx context.Context, userID, chatID int64) error {
	return f.turn(ctx, userID, chatID, func(sessionID string) (*entity.TurnResult, error) {
		return f.triageUC.PreviousQuestion(ctx, sessionID)
	})
}

// RequestConfirmation asks the user to confirm a cancel or reset
func (f *Flow) RequestConfirmation(ctx context.Context, userID, chatID int64, action string) error {
	if _, ok, err := f.activeSession(ctx, userID, chatID); err != nil || !ok {
		return err
	}

	data, err := f.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}
	data.PendingConfirmation = action
	if err := f.stateManager.UpdateStateData(ctx, userID, data); err != nil {
		return fmt.Errorf("update state data: %w", err)
	}

	text := render.MsgConfirmCancel
	if action == ConfirmReset {
		text = render.MsgConfirmReset
	}
	f.sendMessage(chatID, text, f.keyboard.ConfirmKeyboard(action))
	return nil
}

// Confirm performs the pending action. Buttons that no longer match the pending action are ignored.
func (f *Flow) Confirm(ctx context.Context, userID, chatID int64, action string) error {
	data, err := f.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}

	pending := data.PendingConfirmation
	if pending == "" || (action != ConfirmContinue && action != pending) {
		f.sendMessage(chatID, render.ErrInvalidState, nil)
		return nil
	}

	data.PendingConfirmation = ""
	if err := f.stateManager.UpdateStateData(ctx, userID, data); err != nil {
		return fmt.Errorf("update state data: %w", err)
	}

	switch action {
	case ConfirmCancel:
		return f.cancel(ctx, userID, chatID)
	case ConfirmReset:
		return f.reset(ctx, userID, chatID)
	default:
		f.sendMessage(chatID, render.MsgContinue, nil)
		return nil
	}
}

func (f *Flow) reset(ctx context.Context, userID, chatID int64) error {
	return f.turn(ctx, userID, chatID, func(sessionID string) (*entity.TurnResult, error) {
		res, err := f.triageUC.ResetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		// A fresh questionnaire may raise the same alert again
		data, err := f.stateManager.GetStateData(ctx, userID)
		if err != nil {
			return nil, err
		}
		data.AnnouncedPriority = 0
		if err := f.stateManager.UpdateStateData(ctx, userID, data); err != nil {
			return nil, err
		}
		return res, nil
	})
}

func (f *Flow) cancel(ctx context.Context, userID, chatID int64) error {
	sessionID, ok, err := f.activeSession(ctx, userID, chatID)
	if err != nil || !ok {
		return err
	}

	if err := f.triageUC.CancelSession(ctx, sessionID); err != nil {
		ctxzap.Warn(ctx, "failed to cancel session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
	}

	data, err := f.stateManager.GetStateData(ctx, userID)
	if err == nil {
		f.messageSender.ClearKeyboard(chatID, data.LastMessageID)
	}

	if err := f.stateManager.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session: %w", err)
	}

	f.sendMessage(chatID, render.MsgSessionFinished, nil)
	return nil
}

// Diagnose requests the assessment and offers the report downloads
func (f *Flow) Diagnose(ctx context.Context, userID, chatID int64) error {
	sessionID, ok, err := f.activeSession(ctx, userID, chatID)
	if err != nil || !ok {
		return err
	}

	f.sendMessage(chatID, render.MsgDiagnosing, nil)

	progress := NewProgressNotifier(f.bot, chatID)
	progress.Start(ctx)
	diagnosis, err := f.triageUC.Diagnose(ctx, sessionID)
	progress.Stop()

	if err != nil {
		f.HandleError(ctx, chatID, err)
		if !isStateConflict(err) {
			f.sendMessage(chatID, render.MsgRetryDiagnosis, f.keyboard.RetryDiagnosisKeyboard())
		}
		return nil
	}

	f.sendMessage(chatID, render.RenderDiagnosis(diagnosis), nil)
	f.sendMessage(chatID, render.MsgChooseReport, f.keyboard.ReportKeyboard())
	return nil
}

// SendReport uploads the session report in the requested format
func (f *Flow) SendReport(ctx context.Context, userID, chatID int64, format string) error {
	sessionID, ok, err := f.activeSession(ctx, userID, chatID)
	if err != nil || !ok {
		return err
	}

	fmtr, err := f.formatters.Create(entity.ResultFormat(format))
	if err != nil {
		f.HandleError(ctx, chatID, err)
		return nil
	}

	upload := NewChatActionNotifier(f.bot, chatID, tgbotapi.ChatUploadDocument, f.logger)
	upload.Start(ctx)
	defer upload.Stop()

	report, err := f.triageUC.GetReport(ctx, sessionID)
	if err != nil {
		f.HandleError(ctx, chatID, err)
		return nil
	}

	body, err := fmtr.Format(report)
	if err != nil {
		f.HandleError(ctx, chatID, fmt.Errorf("format report: %w", err))
		return nil
	}

	filename := fmt.Sprintf("triage-report%s", fmtr.FileExtension())
	if err := f.messageSender.SendDocument(chatID, filename, body); err != nil {
		f.sendMessage(chatID, render.ErrGeneric, nil)
	}
	return nil
}

// turn runs a questionnaire operation on the active session and shows the result
func (f *Flow) turn(
	ctx context.Context, userID, chatID int64,
	op func(sessionID string) (*entity.TurnResult, error),
) error {
	sessionID, ok, err := f.activeSession(ctx, userID, chatID)
	if err != nil || !ok {
		return err
	}

	res, err := op(sessionID)
	if err != nil {
		f.HandleError(ctx, chatID, err)
		return nil
	}

	data, err := f.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return fmt.Errorf("get state data: %w", err)
	}
	return f.sendTurn(ctx, userID, chatID, res, data)
}

// sendTurn shows a new emergency alert first, then the next prompt
func (f *Flow) sendTurn(ctx context.Context, userID, chatID int64, res *entity.TurnResult, data *state.StateData) error {
	f.messageSender.ClearKeyboard(chatID, data.LastMessageID)

	if alert := res.Emergency; alert != nil &&
		(data.AnnouncedPriority == 0 || alert.Priority < data.AnnouncedPriority) {
		ctxzap.Warn(ctx, "emergency alert sent to chat",
			zap.String("category", alert.Category),
			zap.Int("priority", alert.Priority),
		)
		if _, err := sendCriticalMessage(ctx, f.bot, chatID, render.RenderEmergency(alert), nil); err == nil {
			data.AnnouncedPriority = alert.Priority
		}
	}

	var (
		text   string
		markup interface{}
	)
	switch {
	case res.Complete:
		text = render.MsgQuestionnaireComplete
		markup = f.keyboard.CompleteKeyboard()
	default:
		text = render.RenderQuestion(res.Question, res.Progress)
		markup = f.keyboard.QuestionKeyboard(res.Question, res.Progress.Current > 0)
	}
	if res.ValidationError != nil {
		text = fmt.Sprintf(render.MsgValidation, *res.ValidationError) + "\n\n" + text
	}

	messageID, err := f.messageSender.Send(chatID, text, markup)
	if err != nil {
		messageID = 0
	}
	data.LastMessageID = messageID

	if err := f.stateManager.UpdateStateData(ctx, userID, data); err != nil {
		return fmt.Errorf("update state data: %w", err)
	}
	return nil
}

// activeSession returns the session bound to the user, telling them when there is none
func (f *Flow) activeSession(ctx context.Context, userID, chatID int64) (string, bool, error) {
	sessionID, err := f.stateManager.ActiveSessionID(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("get active session: %w", err)
	}
	if sessionID == "" {
		f.sendMessage(chatID, render.MsgNoActiveSession, nil)
		return "", false, nil
	}
	return sessionID, true, nil
}

func isStateConflict(err error) bool {
	return classifyHandlerError(err).Severity == SeverityWarning
}

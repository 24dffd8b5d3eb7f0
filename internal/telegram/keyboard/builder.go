package keyboard

import (
	"strconv"

	"github.com/futig/triage-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩺 Start assessment", EncodeCallback(ActionCommand, "start")),
		),
	)
}

// QuestionKeyboard offers the question's options (one per row), then skip and back
func (b *Builder) QuestionKeyboard(q *entity.QuestionDTO, hasPrevious bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if q != nil {
		for i, opt := range q.Options {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(opt, EncodeCallback(ActionOption, strconv.Itoa(i))),
			))
		}
	}

	nav := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", EncodeCallback(ActionCommand, "skip")),
	)
	if hasPrevious {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Back", EncodeCallback(ActionCommand, "back")))
	}
	rows = append(rows, nav)

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CompleteKeyboard is shown once every question is answered
func (b *Builder) CompleteKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Get assessment", EncodeCallback(ActionCommand, "diagnose")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Change last answer", EncodeCallback(ActionCommand, "back")),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionCommand, "reset")),
		),
	)
}

// ReportKeyboard creates report download buttons
func (b *Builder) ReportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 .md", EncodeCallback(ActionReport, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📕 .pdf", EncodeCallback(ActionReport, string(entity.FormatPDF))),
			tgbotapi.NewInlineKeyboardButtonData("📘 .docx", EncodeCallback(ActionReport, string(entity.FormatDOCX))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩺 New assessment", EncodeCallback(ActionCommand, "start")),
		),
	)
}

// RetryDiagnosisKeyboard is shown when the diagnosis backend failed
func (b *Builder) RetryDiagnosisKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Try again", EncodeCallback(ActionCommand, "diagnose")),
		),
	)
}

// ConfirmKeyboard asks to confirm a destructive action ("cancel" or "reset")
func (b *Builder) ConfirmKeyboard(action string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes", EncodeCallback(ActionConfirm, action)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, "continue")),
		),
	)
}

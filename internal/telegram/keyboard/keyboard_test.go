package keyboard

import (
	"testing"

	"github.com/futig/triage-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    *CallbackData
		wantErr bool
	}{
		{data: "action:start", want: &CallbackData{Action: "action", Value: "start"}},
		{data: "opt:2", want: &CallbackData{Action: "opt", Value: "2"}},
		{data: "dl:", want: &CallbackData{Action: "dl", Value: ""}},
		{data: "confirm:a:b", want: &CallbackData{Action: "confirm", Value: "a:b"}},
		{data: "nocolon", wantErr: true},
		{data: ":value", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionKeyboard(t *testing.T) {
	b := NewBuilder()
	q := &entity.QuestionDTO{ID: "duration", Options: []string{"Just started", "A few days"}}

	kb := b.QuestionKeyboard(q, true)
	require.Len(t, kb.InlineKeyboard, 3)
	require.NotNil(t, kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "opt:1", *kb.InlineKeyboard[1][0].CallbackData)

	nav := kb.InlineKeyboard[2]
	require.Len(t, nav, 2)
	assert.Equal(t, "action:skip", *nav[0].CallbackData)
	assert.Equal(t, "action:back", *nav[1].CallbackData)

	kb = b.QuestionKeyboard(&entity.QuestionDTO{ID: "age"}, false)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Len(t, kb.InlineKeyboard[0], 1)
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	b := NewBuilder()
	for _, kb := range [][][]string{
		labels(b.ReportKeyboard().InlineKeyboard),
		labels(b.CompleteKeyboard().InlineKeyboard),
		labels(b.ConfirmKeyboard("cancel").InlineKeyboard),
	} {
		for _, row := range kb {
			for _, data := range row {
				assert.LessOrEqual(t, len(data), 64)
			}
		}
	}
}

func labels(rows [][]tgbotapi.InlineKeyboardButton) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		var data []string
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
		out = append(out, data)
	}
	return out
}

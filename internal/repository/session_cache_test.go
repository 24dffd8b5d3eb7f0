package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/telegram/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySessions is a counting SessionRepository used behind the cache
type memorySessions struct {
	data    map[string]*entity.TriageSession
	gets    int
	updates int
	failing bool
}

func newMemorySessions() *memorySessions {
	return &memorySessions{data: map[string]*entity.TriageSession{}}
}

func (m *memorySessions) Create(_ context.Context, s *entity.TriageSession) error {
	m.data[s.ID] = cloneSession(s)
	return nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*entity.TriageSession, error) {
	m.gets++
	s, ok := m.data[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *memorySessions) Update(_ context.Context, s *entity.TriageSession) error {
	m.updates++
	if m.failing {
		return errors.New("db down")
	}
	m.data[s.ID] = cloneSession(s)
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func newSession() *entity.TriageSession {
	now := time.Now()
	return &entity.TriageSession{
		ID:     uuid.NewString(),
		Status: entity.TriageStatusInProgress,
		Questionnaire: entity.QuestionnaireState{
			Responses: map[string]string{"age": "30"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionCache_StandaloneLifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCache(time.Minute, time.Minute, nil)
	s := newSession()

	require.NoError(t, c.Create(ctx, s))

	got, err := c.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", got.Questionnaire.Responses["age"])

	got.Questionnaire.Responses["age"] = "99"
	again, err := c.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", again.Questionnaire.Responses["age"], "cached entry must not alias returned value")

	got.Status = entity.TriageStatusCompleted
	require.NoError(t, c.Update(ctx, got))
	again, err = c.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TriageStatusCompleted, again.Status)

	require.NoError(t, c.Delete(ctx, s.ID))
	_, err = c.Get(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionCache_UpdateUnknownWithoutBackend(t *testing.T) {
	c := NewSessionCache(time.Minute, time.Minute, nil)
	err := c.Update(context.Background(), newSession())
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	backend := newMemorySessions()
	s := newSession()
	require.NoError(t, backend.Create(ctx, s))

	c := NewSessionCache(time.Minute, time.Minute, backend)

	_, err := c.Get(ctx, s.ID)
	require.NoError(t, err)
	_, err = c.Get(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.gets, "second read should be served from cache")
}

func TestSessionCache_WriteThrough(t *testing.T) {
	ctx := context.Background()
	backend := newMemorySessions()
	c := NewSessionCache(time.Minute, time.Minute, backend)
	s := newSession()

	require.NoError(t, c.Create(ctx, s))
	assert.Contains(t, backend.data, s.ID)

	s.Status = entity.TriageStatusCanceled
	require.NoError(t, c.Update(ctx, s))
	assert.Equal(t, entity.TriageStatusCanceled, backend.data[s.ID].Status)
}

func TestSessionCache_FailedWriteEvicts(t *testing.T) {
	ctx := context.Background()
	backend := newMemorySessions()
	c := NewSessionCache(time.Minute, time.Minute, backend)
	s := newSession()
	require.NoError(t, c.Create(ctx, s))

	backend.failing = true
	s.Status = entity.TriageStatusCompleted
	require.Error(t, c.Update(ctx, s))

	got, err := c.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TriageStatusInProgress, got.Status)
	assert.Equal(t, 1, backend.gets)
}

func TestSessionCache_ExpiredEntry(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCache(10*time.Millisecond, time.Minute, nil)
	s := newSession()
	require.NoError(t, c.Create(ctx, s))

	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestCloneSession_DeepCopiesDiagnosis(t *testing.T) {
	s := newSession()
	s.Diagnosis = &entity.Diagnosis{RedFlags: []string{"chest pain"}}
	s.Emergency = &entity.EmergencyAlert{Type: "CARDIAC", Priority: 1}

	out := cloneSession(s)
	out.Diagnosis.RedFlags[0] = "changed"
	out.Emergency.Priority = 3

	assert.Equal(t, "chest pain", s.Diagnosis.RedFlags[0])
	assert.Equal(t, 1, s.Emergency.Priority)
}

func TestTelegramStateCache(t *testing.T) {
	ctx := context.Background()
	c := NewTelegramStateCache(time.Minute, time.Minute, nil)

	_, err := c.Get(ctx, 42)
	require.ErrorIs(t, err, entity.ErrChatStateNotFound)

	sessionID := uuid.NewString()
	require.NoError(t, c.Set(ctx, &state.TelegramSession{
		UserID:    42,
		ChatID:    4242,
		SessionID: sessionID,
		StateData: json.RawMessage(`{"last_message_id":7}`),
	}))

	got, err := c.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), got.ChatID)
	assert.JSONEq(t, `{"last_message_id":7}`, string(got.StateData))

	bySession, err := c.GetBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bySession.UserID)

	_, err = c.GetBySessionID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrChatStateNotFound)

	require.NoError(t, c.Delete(ctx, 42))
	_, err = c.Get(ctx, 42)
	assert.ErrorIs(t, err, entity.ErrChatStateNotFound)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/telegram/state"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ state.Storage = &TelegramStatePostgres{}

const (
	selectTelegramSessionColumns = `SELECT user_id, chat_id, session_id, state_data, created_at, updated_at FROM telegram_sessions`

	upsertTelegramSessionQuery = `
INSERT INTO telegram_sessions (user_id, chat_id, session_id, state_data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE
SET chat_id = EXCLUDED.chat_id,
    session_id = EXCLUDED.session_id,
    state_data = EXCLUDED.state_data,
    updated_at = EXCLUDED.updated_at`

	deleteTelegramSessionQuery = `DELETE FROM telegram_sessions WHERE user_id = $1`
)

// TelegramStatePostgres stores the telegram user -> triage session mapping
type TelegramStatePostgres struct {
	db *pgxpool.Pool
}

func NewTelegramStatePostgres(db *pgxpool.Pool) *TelegramStatePostgres {
	return &TelegramStatePostgres{
		db: db,
	}
}

// Get retrieves telegram session by user ID
func (r *TelegramStatePostgres) Get(ctx context.Context, userID int64) (*state.TelegramSession, error) {
	row := r.db.QueryRow(ctx, selectTelegramSessionColumns+` WHERE user_id = $1`, userID)

	session, err := scanTelegramSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", entity.ErrChatStateNotFound, userID)
		}
		return nil, fmt.Errorf("query telegram session: %w", err)
	}

	return session, nil
}

// Set saves telegram session
func (r *TelegramStatePostgres) Set(ctx context.Context, session *state.TelegramSession) error {
	var sessionID pgtype.UUID
	if session.SessionID != "" {
		parsed, err := uuid.Parse(session.SessionID)
		if err != nil {
			return fmt.Errorf("%w: invalid session ID %q", entity.ErrInvalidParameter, session.SessionID)
		}
		sessionID = pgtype.UUID{Bytes: parsed, Valid: true}
	}

	stateData := []byte(session.StateData)
	if len(stateData) == 0 {
		stateData = []byte("{}")
	}

	_, err := r.db.Exec(ctx, upsertTelegramSessionQuery,
		session.UserID, session.ChatID, sessionID, stateData, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert telegram session: %w", err)
	}

	return nil
}

// Delete removes telegram session
func (r *TelegramStatePostgres) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, deleteTelegramSessionQuery, userID); err != nil {
		return fmt.Errorf("delete telegram session: %w", err)
	}

	return nil
}

// GetBySessionID retrieves telegram session by triage session ID
func (r *TelegramStatePostgres) GetBySessionID(ctx context.Context, sessionID string) (*state.TelegramSession, error) {
	pgID, err := toPgUUID(sessionID)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, selectTelegramSessionColumns+` WHERE session_id = $1`, pgID)

	session, err := scanTelegramSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", entity.ErrChatStateNotFound, sessionID)
		}
		return nil, fmt.Errorf("query telegram session by session: %w", err)
	}

	return session, nil
}

func scanTelegramSession(row pgx.Row) (*state.TelegramSession, error) {
	var (
		session   state.TelegramSession
		sessionID pgtype.UUID
		stateData []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&session.UserID, &session.ChatID, &sessionID, &stateData, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if sessionID.Valid {
		session.SessionID = uuid.UUID(sessionID.Bytes).String()
	}
	if len(stateData) > 0 {
		session.StateData = json.RawMessage(stateData)
	} else {
		session.StateData = json.RawMessage("{}")
	}
	session.CreatedAt = createdAt
	session.UpdatedAt = updatedAt

	return &session, nil
}

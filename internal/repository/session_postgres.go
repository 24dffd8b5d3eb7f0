package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for triage session persistence
type SessionRepository interface {
	Create(ctx context.Context, session *entity.TriageSession) error
	Get(ctx context.Context, id string) (*entity.TriageSession, error)
	Update(ctx context.Context, session *entity.TriageSession) error
	Delete(ctx context.Context, id string) error
}

var _ SessionRepository = &SessionPostgres{}

const (
	insertSessionQuery = `
INSERT INTO triage_sessions (id, status, questionnaire, emergency, diagnosis, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectSessionQuery = `
SELECT id, status, questionnaire, emergency, diagnosis, error, created_at, updated_at
FROM triage_sessions
WHERE id = $1`

	updateSessionQuery = `
UPDATE triage_sessions
SET status = $2, questionnaire = $3, emergency = $4, diagnosis = $5, error = $6, updated_at = $7
WHERE id = $1`

	deleteSessionQuery = `DELETE FROM triage_sessions WHERE id = $1`
)

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{
		db: db,
	}
}

func (r *SessionPostgres) Create(ctx context.Context, session *entity.TriageSession) error {
	id, err := toPgUUID(session.ID)
	if err != nil {
		return err
	}

	row, err := toSessionRow(session)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, insertSessionQuery,
		id, string(session.Status), row.questionnaire, row.emergency, row.diagnosis, session.Error,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *SessionPostgres) Get(ctx context.Context, id string) (*entity.TriageSession, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, err
	}

	var (
		dbID          pgtype.UUID
		status        string
		questionnaire []byte
		emergency     []byte
		diagnosis     []byte
		errMsg        *string
		createdAt     time.Time
		updatedAt     time.Time
	)

	err = r.db.QueryRow(ctx, selectSessionQuery, pgID).Scan(
		&dbID, &status, &questionnaire, &emergency, &diagnosis, &errMsg, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	session := &entity.TriageSession{
		ID:        uuid.UUID(dbID.Bytes).String(),
		Status:    entity.TriageStatus(status),
		Error:     errMsg,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	if err := json.Unmarshal(questionnaire, &session.Questionnaire); err != nil {
		return nil, fmt.Errorf("decode questionnaire state: %w", err)
	}
	if len(emergency) > 0 {
		session.Emergency = &entity.EmergencyAlert{}
		if err := json.Unmarshal(emergency, session.Emergency); err != nil {
			return nil, fmt.Errorf("decode emergency alert: %w", err)
		}
	}
	if len(diagnosis) > 0 {
		session.Diagnosis = &entity.Diagnosis{}
		if err := json.Unmarshal(diagnosis, session.Diagnosis); err != nil {
			return nil, fmt.Errorf("decode diagnosis: %w", err)
		}
	}

	return session, nil
}

func (r *SessionPostgres) Update(ctx context.Context, session *entity.TriageSession) error {
	id, err := toPgUUID(session.ID)
	if err != nil {
		return err
	}

	row, err := toSessionRow(session)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, updateSessionQuery,
		id, string(session.Status), row.questionnaire, row.emergency, row.diagnosis, session.Error, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, session.ID)
	}

	return nil
}

func (r *SessionPostgres) Delete(ctx context.Context, id string) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, deleteSessionQuery, pgID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// sessionRow holds the JSONB columns of a triage session. Nil slices are stored as NULL.
type sessionRow struct {
	questionnaire []byte
	emergency     []byte
	diagnosis     []byte
}

func toSessionRow(session *entity.TriageSession) (sessionRow, error) {
	var (
		row sessionRow
		err error
	)

	if row.questionnaire, err = json.Marshal(session.Questionnaire); err != nil {
		return row, fmt.Errorf("encode questionnaire state: %w", err)
	}
	if session.Emergency != nil {
		if row.emergency, err = json.Marshal(session.Emergency); err != nil {
			return row, fmt.Errorf("encode emergency alert: %w", err)
		}
	}
	if session.Diagnosis != nil {
		if row.diagnosis, err = json.Marshal(session.Diagnosis); err != nil {
			return row, fmt.Errorf("encode diagnosis: %w", err)
		}
	}

	return row, nil
}

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid session ID %q", entity.ErrInvalidParameter, id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

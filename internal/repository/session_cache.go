package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

var _ SessionRepository = &SessionCache{}

// SessionCache keeps recently used sessions in memory. With a next repository it
// reads through on a miss and writes through on every change; without one it is
// the only store and sessions live until the TTL expires.
type SessionCache struct {
	cache *cache.Cache
	next  SessionRepository
}

func NewSessionCache(ttl, cleanupInterval time.Duration, next SessionRepository) *SessionCache {
	return &SessionCache{
		cache: cache.New(ttl, cleanupInterval),
		next:  next,
	}
}

func (c *SessionCache) Create(ctx context.Context, session *entity.TriageSession) error {
	if c.next != nil {
		if err := c.next.Create(ctx, session); err != nil {
			return err
		}
	}

	c.cache.SetDefault(session.ID, cloneSession(session))
	return nil
}

func (c *SessionCache) Get(ctx context.Context, id string) (*entity.TriageSession, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cloneSession(cached.(*entity.TriageSession)), nil
	}

	if c.next == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}

	session, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(id, cloneSession(session))
	return session, nil
}

func (c *SessionCache) Update(ctx context.Context, session *entity.TriageSession) error {
	if c.next != nil {
		if err := c.next.Update(ctx, session); err != nil {
			c.cache.Delete(session.ID)
			return err
		}
	} else if _, ok := c.cache.Get(session.ID); !ok {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, session.ID)
	}

	c.cache.SetDefault(session.ID, cloneSession(session))
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, id string) error {
	c.cache.Delete(id)

	if c.next != nil {
		return c.next.Delete(ctx, id)
	}
	return nil
}

// cloneSession copies the mutable parts so cached entries never alias caller values
func cloneSession(s *entity.TriageSession) *entity.TriageSession {
	out := *s
	out.Questionnaire.Responses = maps.Clone(s.Questionnaire.Responses)
	out.Questionnaire.Injected = slices.Clone(s.Questionnaire.Injected)

	if s.Emergency != nil {
		e := *s.Emergency
		out.Emergency = &e
	}
	if s.Diagnosis != nil {
		d := *s.Diagnosis
		d.Causes = slices.Clone(s.Diagnosis.Causes)
		d.RedFlags = slices.Clone(s.Diagnosis.RedFlags)
		d.AdditionalQuestions = slices.Clone(s.Diagnosis.AdditionalQuestions)
		d.RecommendedTests = slices.Clone(s.Diagnosis.RecommendedTests)
		out.Diagnosis = &d
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}

	return &out
}

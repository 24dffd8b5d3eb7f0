package repository

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/telegram/state"
	"github.com/patrickmn/go-cache"
)

var _ state.Storage = &TelegramStateCache{}

// TelegramStateCache is the in-memory chat mapping, optionally in front of another storage
type TelegramStateCache struct {
	cache *cache.Cache
	next  state.Storage
}

func NewTelegramStateCache(ttl, cleanupInterval time.Duration, next state.Storage) *TelegramStateCache {
	return &TelegramStateCache{
		cache: cache.New(ttl, cleanupInterval),
		next:  next,
	}
}

func (c *TelegramStateCache) Get(ctx context.Context, userID int64) (*state.TelegramSession, error) {
	if cached, ok := c.cache.Get(userKey(userID)); ok {
		return cloneTelegramSession(cached.(*state.TelegramSession)), nil
	}

	if c.next == nil {
		return nil, fmt.Errorf("%w: user %d", entity.ErrChatStateNotFound, userID)
	}

	session, err := c.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(userKey(userID), cloneTelegramSession(session))
	return session, nil
}

func (c *TelegramStateCache) Set(ctx context.Context, session *state.TelegramSession) error {
	if c.next != nil {
		if err := c.next.Set(ctx, session); err != nil {
			c.cache.Delete(userKey(session.UserID))
			return err
		}
	}

	c.cache.SetDefault(userKey(session.UserID), cloneTelegramSession(session))
	return nil
}

func (c *TelegramStateCache) Delete(ctx context.Context, userID int64) error {
	c.cache.Delete(userKey(userID))

	if c.next != nil {
		return c.next.Delete(ctx, userID)
	}
	return nil
}

func (c *TelegramStateCache) GetBySessionID(ctx context.Context, sessionID string) (*state.TelegramSession, error) {
	for _, item := range c.cache.Items() {
		session := item.Object.(*state.TelegramSession)
		if session.SessionID == sessionID {
			return cloneTelegramSession(session), nil
		}
	}

	if c.next == nil {
		return nil, fmt.Errorf("%w: session %s", entity.ErrChatStateNotFound, sessionID)
	}

	return c.next.GetBySessionID(ctx, sessionID)
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func cloneTelegramSession(s *state.TelegramSession) *state.TelegramSession {
	out := *s
	out.StateData = slices.Clone(s.StateData)
	return &out
}

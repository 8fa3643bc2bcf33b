package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"agentd/internal/llm"
)

// DefaultSessionTTL is the idle lifetime of a handle when none is configured.
const DefaultSessionTTL = 15 * time.Minute

// session is an open handle: a model name bound to one backend.
type session struct {
	id      string
	model   string
	backend llm.Backend
}

// sessionStore holds open handles. Every successful lookup pushes the
// expiry back by the TTL, so handles die after idle time, not age.
type sessionStore struct {
	cache *ttlcache.Cache[string, *session]
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := ttlcache.New[string, *session](
		ttlcache.WithTTL[string, *session](ttl),
	)
	c.OnInsertion(func(_ context.Context, _ *ttlcache.Item[string, *session]) {
		sessionsOpen.Inc()
	})
	c.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *session]) {
		sessionsOpen.Dec()
		if reason == ttlcache.EvictionReasonExpired {
			zlog.Debug().Str("session", item.Key()).Str("model", item.Value().model).Msg("session expired")
		}
	})
	go c.Start()
	return &sessionStore{cache: c}
}

// Close stops the expiration loop.
func (s *sessionStore) Close() { s.cache.Stop() }

// put stores b under a fresh id and returns the handle with its expiry.
func (s *sessionStore) put(model string, b llm.Backend) (*session, time.Time, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, time.Time{}, err
	}
	sess := &session{id: id, model: model, backend: b}
	item := s.cache.Set(id, sess, ttlcache.DefaultTTL)
	return sess, item.ExpiresAt(), nil
}

// get returns the handle and its refreshed expiry, or nil if unknown or expired.
func (s *sessionStore) get(id string) (*session, time.Time) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, time.Time{}
	}
	return item.Value(), item.ExpiresAt()
}

// remove drops the handle and reports whether it existed.
func (s *sessionStore) remove(id string) bool {
	if !s.cache.Has(id) {
		return false
	}
	s.cache.Delete(id)
	return true
}

func (s *sessionStore) len() int { return s.cache.Len() }

func newSessionID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

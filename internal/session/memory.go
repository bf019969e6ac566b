// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// MemoryStore keeps sessions in process memory. Expired entries are dropped
// when they are looked up and swept on every Save, so abandoned logins do not
// accumulate.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "MemoryStore.Get")
	defer span.End()

	span.AddEvent("RLock")
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	span.AddEvent("RUnlock")

	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(m.now(), m.ttl) {
		span.AddEvent("expired")
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "MemoryStore.Save")
	defer span.End()

	span.AddEvent("Lock")
	m.mu.Lock()
	defer span.AddEvent("Unlock")
	defer m.mu.Unlock()

	m.sweep()
	m.sessions[s.Token] = *s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "MemoryStore.Delete")
	defer span.End()

	span.AddEvent("Lock")
	m.mu.Lock()
	defer span.AddEvent("Unlock")
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// sweep drops expired sessions. Callers hold the write lock.
func (m *MemoryStore) sweep() {
	now := m.now()
	for token, s := range m.sessions {
		if s.Expired(now, m.ttl) {
			delete(m.sessions, token)
		}
	}
}

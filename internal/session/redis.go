// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in redis; the key expires together with the
// session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	const op = "session.redis.Get"

	var span trace.Span
	ctx, span = tracer.Start(ctx, "RedisStore.Get")
	defer span.End()

	data, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	const op = "session.redis.Save"

	var span trace.Span
	ctx, span = tracer.Start(ctx, "RedisStore.Save")
	defer span.End()

	remaining := s.ExpiresAt(r.ttl).Sub(r.now())
	if remaining <= 0 {
		span.AddEvent("already expired")
		return r.Delete(ctx, s.Token)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.Token, data, remaining).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	const op = "session.redis.Delete"

	var span trace.Span
	ctx, span = tracer.Start(ctx, "RedisStore.Delete")
	defer span.End()

	if err := r.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Package redis keeps sessions in Redis so they survive restarts and can be
// shared between server processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/infrastructure/config"
)

const (
	sessionPrefix  = "session:"
	registryPrefix = "user_sessions:"
)

// Store implements ports.SessionStore on a Redis hash per session plus a
// per-user registry set of tokens.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.SessionStore = (*Store)(nil)

// NewClient connects to the configured Redis server.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   3,
	})
}

// New wraps client. Sessions live for ttl.
func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(token string) string {
	return sessionPrefix + token
}

func registryKey(userID int64) string {
	return registryPrefix + strconv.FormatInt(userID, 10)
}

// Create opens a session for userID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()

	fields := map[string]interface{}{
		"user_id":    userID,
		"created_at": time.Now().Unix(),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(token), fields)
	pipe.Expire(ctx, sessionKey(token), s.ttl)
	pipe.SAdd(ctx, registryKey(userID), token)
	pipe.Expire(ctx, registryKey(userID), s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Lookup resolves token to its user id.
func (s *Store) Lookup(ctx context.Context, token string) (int64, bool, error) {
	result := s.client.HGet(ctx, sessionKey(token), "user_id")

	// Unknown or expired
	if errors.Is(result.Err(), redis.Nil) {
		return 0, false, nil
	}
	if result.Err() != nil {
		return 0, false, fmt.Errorf("reading session: %w", result.Err())
	}

	userID, err := strconv.ParseInt(result.Val(), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing session user id: %w", err)
	}
	return userID, true, nil
}

// Delete ends a session and removes it from its user's registry.
func (s *Store) Delete(ctx context.Context, token string) error {
	userID, ok, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	if ok {
		pipe.SRem(ctx, registryKey(userID), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteUser ends every session registered for userID.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tokens, err := s.client.SMembers(ctx, registryKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, sessionKey(token))
	}
	keys = append(keys, registryKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}

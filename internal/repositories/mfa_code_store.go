package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MFACodeStore keeps short-lived one-time codes keyed by email.
type MFACodeStore interface {
	// Save replaces any pending code for email and resets its attempt counter.
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Get returns the pending code or ErrNotFound once it expired.
	Get(ctx context.Context, email string) (string, error)
	// IncrAttempts records a failed verification and returns the running total.
	IncrAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

func mfaCodeKey(email string) string {
	return fmt.Sprintf("mfa:%s:code", email)
}

func mfaAttemptsKey(email string) string {
	return fmt.Sprintf("mfa:%s:attempts", email)
}

// RedisMFACodeStore stores codes in Redis with native expiry.
type RedisMFACodeStore struct {
	client *redis.Client
}

func NewRedisMFACodeStore(client *redis.Client) *RedisMFACodeStore {
	return &RedisMFACodeStore{client: client}
}

func (s *RedisMFACodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, mfaCodeKey(email), code, ttl)
		pipe.Set(ctx, mfaAttemptsKey(email), 0, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save mfa code: %w", err)
	}
	return nil
}

func (s *RedisMFACodeStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, mfaCodeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("mfa code for %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get mfa code: %w", err)
	}
	return code, nil
}

func (s *RedisMFACodeStore) IncrAttempts(ctx context.Context, email string) (int, error) {
	n, err := s.client.Incr(ctx, mfaAttemptsKey(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count mfa attempts: %w", err)
	}
	return int(n), nil
}

func (s *RedisMFACodeStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, mfaCodeKey(email), mfaAttemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete mfa code: %w", err)
	}
	return nil
}

type pendingCode struct {
	code      string
	attempts  int
	expiresAt time.Time
}

// MemoryMFACodeStore is the single-process fallback used when no Redis is configured.
type MemoryMFACodeStore struct {
	mu    sync.RWMutex
	codes map[string]*pendingCode
	now   func() time.Time
}

func NewMemoryMFACodeStore() *MemoryMFACodeStore {
	return &MemoryMFACodeStore{
		codes: make(map[string]*pendingCode),
		now:   time.Now,
	}
}

func (s *MemoryMFACodeStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = &pendingCode{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryMFACodeStore) Get(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.codes[email]
	if !ok || s.now().After(p.expiresAt) {
		return "", fmt.Errorf("mfa code for %s: %w", email, ErrNotFound)
	}
	return p.code, nil
}

func (s *MemoryMFACodeStore) IncrAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[email]
	if !ok {
		return 0, fmt.Errorf("mfa code for %s: %w", email, ErrNotFound)
	}
	p.attempts++
	return p.attempts, nil
}

func (s *MemoryMFACodeStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

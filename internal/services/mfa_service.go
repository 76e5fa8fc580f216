package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"rewear/internal/repositories"
)

// MFAService issues and checks the six digit login codes.
type MFAService struct {
	store       repositories.MFACodeStore
	notifier    *Notifier
	ttl         time.Duration
	maxAttempts int
}

func NewMFAService(store repositories.MFACodeStore, notifier *Notifier, ttl time.Duration, maxAttempts int) *MFAService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &MFAService{store: store, notifier: notifier, ttl: ttl, maxAttempts: maxAttempts}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue stores a fresh code for email and mails it.
func (s *MFAService) Issue(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, email, code, s.ttl); err != nil {
		return err
	}
	s.notifier.MFACode(ctx, email, code)
	return nil
}

// Verify consumes the pending code. Expired codes and codes that ran out of
// attempts are deleted.
func (s *MFAService) Verify(ctx context.Context, email, code string) error {
	want, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMFACodeExpired
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
		return s.store.Delete(ctx, email)
	}

	attempts, err := s.store.IncrAttempts(ctx, email)
	if err != nil {
		return err
	}
	if attempts >= s.maxAttempts {
		if err := s.store.Delete(ctx, email); err != nil {
			return err
		}
		return ErrMFAAttemptsExceeded
	}
	return fmt.Errorf("%w: %d attempts remaining", ErrMFACodeInvalid, s.maxAttempts-attempts)
}

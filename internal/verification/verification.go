// Package verification issues and checks the 6-digit e-mail sign-in codes.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCodeExpired = errors.New("verification: code expired")
	ErrCodeInvalid = errors.New("verification: code does not match")
)

// Service issues single-use codes keyed by e-mail
type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, ttl: constants.VerificationCodeTTL, now: time.Now}
}

// NewServiceWithClock is NewService with an injectable clock
func NewServiceWithClock(store Store, now func() time.Time) *Service {
	return &Service{store: store, ttl: constants.VerificationCodeTTL, now: now}
}

// Issue generates a new code for the e-mail, replacing any previous one
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	code, err := utils.GenerateNumericCode(constants.VerificationCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	now := s.now()
	err = s.store.Save(ctx, &models.VerificationCode{
		Email:     NormalizeEmail(email),
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// Verify consumes the code on success. A wrong code leaves it in place.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)

	stored, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if stored.Expired(s.now()) {
		return ErrCodeExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(strings.TrimSpace(code))); err != nil {
		return ErrCodeInvalid
	}

	if err := s.store.Delete(ctx, email); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

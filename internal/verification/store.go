package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"gorm.io/gorm"
)

// ErrCodeNotFound is returned by a Store when no code exists for the e-mail
var ErrCodeNotFound = errors.New("verification: no code for this email")

// Store keeps at most one hashed code per e-mail
type Store interface {
	Save(ctx context.Context, code *models.VerificationCode) error
	FindByEmail(ctx context.Context, email string) (*models.VerificationCode, error)
	Delete(ctx context.Context, email string) error
}

// DatabaseStore keeps codes in the verification_codes table
type DatabaseStore struct {
	repo repository.VerificationCodeRepository
}

func NewDatabaseStore(repo repository.VerificationCodeRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

func (s *DatabaseStore) Save(ctx context.Context, code *models.VerificationCode) error {
	return s.repo.Save(ctx, code)
}

func (s *DatabaseStore) FindByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	code, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	return code, err
}

func (s *DatabaseStore) Delete(ctx context.Context, email string) error {
	return s.repo.Delete(ctx, email)
}

// RedisStore keeps codes as JSON values that redis expires on its own
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func redisKey(email string) string {
	return fmt.Sprintf("verification_code:%s", email)
}

func (s *RedisStore) Save(ctx context.Context, code *models.VerificationCode) error {
	payload, err := json.Marshal(redisCode{
		Email:     code.Email,
		CodeHash:  code.CodeHash,
		ExpiresAt: code.ExpiresAt,
		CreatedAt: code.CreatedAt,
	})
	if err != nil {
		return err
	}

	// keep the key a little past expiry so a late attempt reports "expired" rather than "not found"
	ttl := code.ExpiresAt.Sub(s.now()) + time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}

	return s.client.Set(ctx, redisKey(code.Email), payload, ttl).Err()
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	payload, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	var stored redisCode
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("corrupt verification code for %s: %w", email, err)
	}

	return &models.VerificationCode{
		Email:     stored.Email,
		CodeHash:  stored.CodeHash,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, redisKey(email)).Err()
}

// redisCode is the stored form; models.VerificationCode hides the hash from JSON
type redisCode struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

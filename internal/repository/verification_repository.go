package repository

import (
	"context"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVerificationCodeRepository is a GORM implementation of VerificationCodeRepository
type GormVerificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository creates a new VerificationCodeRepository
func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

// Save upserts the code keyed by e-mail
func (r *GormVerificationCodeRepository) Save(ctx context.Context, code *models.VerificationCode) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
		}).
		Create(code).Error
}

func (r *GormVerificationCodeRepository) FindByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	var code models.VerificationCode
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *GormVerificationCodeRepository) Delete(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.VerificationCode{}).Error
}

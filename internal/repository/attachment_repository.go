package repository

import (
	"context"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

func (r *GormAttachmentRepository) Create(ctx context.Context, attachment *models.GitHubAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *GormAttachmentRepository) FindByID(ctx context.Context, id string) (*models.GitHubAttachment, error) {
	var attachment models.GitHubAttachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByTask retrieves a task's attachments in the order they were added
func (r *GormAttachmentRepository) ListByTask(ctx context.Context, taskID string) ([]models.GitHubAttachment, error) {
	var attachments []models.GitHubAttachment
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes a single attachment; the parent task is unaffected
func (r *GormAttachmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GitHubAttachment{}).Error
}

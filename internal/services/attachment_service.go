package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrInvalidAttachmentType = errors.New("type is required (pull_request, commit, or issue)")
	ErrAttachmentNumber      = errors.New("number is required for pull requests and issues")
	ErrAttachmentSHA         = errors.New("sha is required for commits")
)

// AttachmentService links GitHub items to tasks
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(attachmentRepo repository.AttachmentRepository, taskRepo repository.TaskRepository) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
	}
}

// AttachInput represents input for attaching a GitHub item to a task
type AttachInput struct {
	BoardID   string
	CardID    string
	TaskID    string
	Type      models.GitHubAttachmentType
	Number    string
	SHA       string
	Title     string
	URL       string
	CreatedBy string
}

// Attach records a pull request, commit or issue on a task
func (s *AttachmentService) Attach(ctx context.Context, input AttachInput) (*models.GitHubAttachment, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidAttachmentType
	}

	number := strings.TrimPrefix(strings.TrimSpace(input.Number), "#")
	sha := strings.TrimSpace(input.SHA)
	switch input.Type {
	case models.AttachmentPullRequest, models.AttachmentIssue:
		if number == "" {
			return nil, ErrAttachmentNumber
		}
	case models.AttachmentCommit:
		if sha == "" {
			return nil, ErrAttachmentSHA
		}
	}

	if err := s.ensureTask(ctx, input.BoardID, input.CardID, input.TaskID); err != nil {
		return nil, err
	}

	attachment := &models.GitHubAttachment{
		TaskID:    input.TaskID,
		CardID:    input.CardID,
		BoardID:   input.BoardID,
		Type:      input.Type,
		Number:    number,
		SHA:       sha,
		Title:     input.Title,
		URL:       input.URL,
		CreatedBy: input.CreatedBy,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	return attachment, nil
}

// ListAttachments returns a task's attachments
func (s *AttachmentService) ListAttachments(ctx context.Context, boardID, cardID, taskID string) ([]models.GitHubAttachment, error) {
	if err := s.ensureTask(ctx, boardID, cardID, taskID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// RemoveAttachment deletes one attachment of the task
func (s *AttachmentService) RemoveAttachment(ctx context.Context, taskID, attachmentID string) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}

	if attachment.TaskID != taskID {
		return ErrAttachmentNotFound
	}

	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}

func (s *AttachmentService) ensureTask(ctx context.Context, boardID, cardID, taskID string) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if task.BoardID != boardID || task.CardID != cardID {
		return ErrTaskNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create creates a pending invitation
func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	invitation.Status = models.InvitationPending
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(ctx context.Context, id string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPending finds the pending invitation of a member to a board
func (r *GormInvitationRepository) FindPending(ctx context.Context, boardID, memberID string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND member_id = ? AND status = ?", boardID, memberID, models.InvitationPending).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListPendingForUser retrieves the pending invitations addressed to a user, newest first
func (r *GormInvitationRepository) ListPendingForUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", userID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Accept moves a pending invitation to accepted and adds the member to the board.
// Accepting an accepted invitation re-asserts the membership; the composite key keeps it unique.
func (r *GormInvitationRepository) Accept(ctx context.Context, id string) (*models.Invitation, error) {
	var accepted models.Invitation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitation, err := r.transition(tx, id, models.InvitationAccepted)
		if err != nil {
			return err
		}

		var boardCount int64
		if err := tx.Model(&models.Board{}).Where("id = ?", invitation.BoardID).Count(&boardCount).Error; err != nil {
			return err
		}
		if boardCount > 0 {
			if err := addBoardMember(tx, invitation.BoardID, invitation.MemberID, invitation.UpdatedAt); err != nil {
				return err
			}
		}

		accepted = *invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &accepted, nil
}

// Decline moves a pending invitation to declined
func (r *GormInvitationRepository) Decline(ctx context.Context, id string) (*models.Invitation, error) {
	var declined models.Invitation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitation, err := r.transition(tx, id, models.InvitationDeclined)
		if err != nil {
			return err
		}
		declined = *invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &declined, nil
}

// transition applies pending -> target with a conditional update so that two
// concurrent callers cannot both move the invitation out of pending
func (r *GormInvitationRepository) transition(tx *gorm.DB, id string, target models.InvitationStatus) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := tx.Where("id = ?", id).First(&invitation).Error; err != nil {
		return nil, err
	}

	if invitation.Status == target {
		return &invitation, nil
	}
	if invitation.Status.Terminal() {
		return nil, ErrInvitationClosed
	}

	now := time.Now()
	result := tx.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(map[string]interface{}{"status": target, "updated_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// lost the race; report whatever the winner left behind
		if err := tx.Where("id = ?", id).First(&invitation).Error; err != nil {
			return nil, err
		}
		if invitation.Status == target {
			return &invitation, nil
		}
		return nil, ErrInvitationClosed
	}

	invitation.Status = target
	invitation.UpdatedAt = now
	return &invitation, nil
}

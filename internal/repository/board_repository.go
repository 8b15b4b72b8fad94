package repository

import (
	"context"
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// Create creates the board together with the owner's membership
func (r *GormBoardRepository) Create(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}

		if err := addBoardMember(tx, board.ID, board.OwnerID, board.CreatedAt); err != nil {
			return err
		}

		board.Members = []string{board.OwnerID}
		return nil
	})
}

// FindByID finds a board by ID
func (r *GormBoardRepository) FindByID(ctx context.Context, id string) (*models.Board, error) {
	db := r.db.WithContext(ctx)

	var board models.Board
	if err := db.Where("id = ?", id).First(&board).Error; err != nil {
		return nil, err
	}

	boards := []models.Board{board}
	if err := loadBoardMembers(db, boards); err != nil {
		return nil, err
	}

	return &boards[0], nil
}

// ListByMember retrieves the boards a user belongs to, newest first
func (r *GormBoardRepository) ListByMember(ctx context.Context, userID string) ([]models.Board, error) {
	db := r.db.WithContext(ctx)

	memberSubQuery := db.Model(&models.BoardMember{}).
		Select("board_id").
		Where("user_id = ?", userID)

	var boards []models.Board
	if err := db.Where("id IN (?)", memberSubQuery).
		Order("created_at DESC").
		Find(&boards).Error; err != nil {
		return nil, err
	}

	if err := loadBoardMembers(db, boards); err != nil {
		return nil, err
	}

	return boards, nil
}

// Update updates the provided fields of a board
func (r *GormBoardRepository) Update(ctx context.Context, id string, update BoardUpdate) (*models.Board, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}

	result := r.db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes the board, its cards, tasks, attachments, invitations and members atomically
func (r *GormBoardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBoardTx(tx, id)
	})
}

// IsMember checks board membership without loading the member set
func (r *GormBoardRepository) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error
	return count > 0, err
}

// RemoveMember removes a user from the board's member set
func (r *GormBoardRepository) RemoveMember(ctx context.Context, boardID, userID string) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&models.BoardMember{}).Error
}

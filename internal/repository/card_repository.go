package repository

import (
	"context"
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCardRepository is a GORM implementation of CardRepository
type GormCardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(db *gorm.DB) CardRepository {
	return &GormCardRepository{db: db}
}

// Create creates the card with an empty task counter and the owner as member
func (r *GormCardRepository) Create(ctx context.Context, card *models.Card) error {
	card.TasksCount = 0

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(card).Error; err != nil {
			return err
		}

		member := models.CardMember{CardID: card.ID, UserID: card.OwnerID, JoinedAt: card.CreatedAt}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
			return err
		}

		card.Members = []string{card.OwnerID}
		return nil
	})
}

// FindByID finds a card by ID
func (r *GormCardRepository) FindByID(ctx context.Context, id string) (*models.Card, error) {
	db := r.db.WithContext(ctx)

	var card models.Card
	if err := db.Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}

	cards := []models.Card{card}
	if err := loadCardMembers(db, cards); err != nil {
		return nil, err
	}

	return &cards[0], nil
}

// ListByBoard retrieves a board's cards, newest first
func (r *GormCardRepository) ListByBoard(ctx context.Context, boardID string) ([]models.Card, error) {
	db := r.db.WithContext(ctx)

	var cards []models.Card
	if err := db.Where("board_id = ?", boardID).
		Order("created_at DESC").
		Find(&cards).Error; err != nil {
		return nil, err
	}

	if err := loadCardMembers(db, cards); err != nil {
		return nil, err
	}

	return cards, nil
}

// ListByMember retrieves every card a user is a member of
func (r *GormCardRepository) ListByMember(ctx context.Context, userID string) ([]models.Card, error) {
	db := r.db.WithContext(ctx)

	memberSubQuery := db.Model(&models.CardMember{}).
		Select("card_id").
		Where("user_id = ?", userID)

	var cards []models.Card
	if err := db.Where("id IN (?)", memberSubQuery).
		Order("created_at DESC").
		Find(&cards).Error; err != nil {
		return nil, err
	}

	if err := loadCardMembers(db, cards); err != nil {
		return nil, err
	}

	return cards, nil
}

// Update updates the provided fields of a card
func (r *GormCardRepository) Update(ctx context.Context, id string, update CardUpdate) (*models.Card, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}

	result := r.db.WithContext(ctx).Model(&models.Card{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes the card and its tasks atomically
func (r *GormCardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCardTx(tx, id)
	})
}

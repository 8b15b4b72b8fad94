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
	ErrCardNotFound     = errors.New("card not found")
	ErrCardNameRequired = errors.New("card name is required")
)

// CardService handles card business logic
type CardService struct {
	cardRepo  repository.CardRepository
	boardRepo repository.BoardRepository
}

// NewCardService creates a new CardService
func NewCardService(cardRepo repository.CardRepository, boardRepo repository.BoardRepository) *CardService {
	return &CardService{
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
	}
}

// CreateCardInput represents input for creating a card
type CreateCardInput struct {
	BoardID     string
	Name        string
	Description string
	OwnerID     string
}

// UpdateCardInput represents input for updating a card
type UpdateCardInput struct {
	Name        *string
	Description *string
}

// CreateCard creates a card on an existing board
func (s *CardService) CreateCard(ctx context.Context, input CreateCardInput) (*models.Card, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCardNameRequired
	}

	if _, err := s.boardRepo.FindByID(ctx, input.BoardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}

	card := &models.Card{
		BoardID:     input.BoardID,
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return card, nil
}

// ListCards returns the cards of a board, newest first
func (s *CardService) ListCards(ctx context.Context, boardID string) ([]models.Card, error) {
	cards, err := s.cardRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// ListMemberCards returns every card the user is a member of, across boards
func (s *CardService) ListMemberCards(ctx context.Context, userID string) ([]models.Card, error) {
	cards, err := s.cardRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// GetCard returns a card that belongs to the given board
func (s *CardService) GetCard(ctx context.Context, boardID, cardID string) (*models.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", err)
	}

	if card.BoardID != boardID {
		return nil, ErrCardNotFound
	}

	return card, nil
}

// UpdateCard updates a card's name or description
func (s *CardService) UpdateCard(ctx context.Context, boardID, cardID string, input UpdateCardInput) (*models.Card, error) {
	if input.Name == nil && input.Description == nil {
		return nil, ErrNothingToUpdate
	}

	if _, err := s.GetCard(ctx, boardID, cardID); err != nil {
		return nil, err
	}

	update := repository.CardUpdate{Description: input.Description}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCardNameRequired
		}
		update.Name = &name
	}

	card, err := s.cardRepo.Update(ctx, cardID, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return card, nil
}

// DeleteCard deletes a card together with its tasks and their attachments
func (s *CardService) DeleteCard(ctx context.Context, boardID, cardID string) error {
	if _, err := s.GetCard(ctx, boardID, cardID); err != nil {
		return err
	}

	if err := s.cardRepo.Delete(ctx, cardID); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	return nil
}

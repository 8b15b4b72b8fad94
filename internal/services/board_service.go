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
	ErrBoardNotFound     = errors.New("board not found")
	ErrNotBoardMember    = errors.New("user is not a member of the board")
	ErrNotBoardOwner     = errors.New("only the board owner can perform this action")
	ErrBoardNameRequired = errors.New("board name is required")
	ErrCannotRemoveOwner = errors.New("the board owner cannot be removed from the board")
	ErrMemberNotOnBoard  = errors.New("member not found on board")
	ErrNothingToUpdate   = errors.New("no fields to update")
)

// BoardService handles board business logic
type BoardService struct {
	boardRepo repository.BoardRepository
}

// NewBoardService creates a new BoardService
func NewBoardService(boardRepo repository.BoardRepository) *BoardService {
	return &BoardService{boardRepo: boardRepo}
}

// CreateBoardInput represents input for creating a board
type CreateBoardInput struct {
	Name        string
	Description string
	OwnerID     string
}

// UpdateBoardInput represents input for updating a board
type UpdateBoardInput struct {
	Name        *string
	Description *string
}

// CreateBoard creates a board whose only member is its owner
func (s *BoardService) CreateBoard(ctx context.Context, input CreateBoardInput) (*models.Board, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrBoardNameRequired
	}

	board := &models.Board{
		Name:        name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, nil
}

// ListBoards returns the boards the user belongs to
func (s *BoardService) ListBoards(ctx context.Context, userID string) ([]models.Board, error) {
	boards, err := s.boardRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// GetBoard returns the board when userID is one of its members
func (s *BoardService) GetBoard(ctx context.Context, boardID, userID string) (*models.Board, error) {
	board, err := s.findBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if !board.HasMember(userID) {
		return nil, ErrNotBoardMember
	}

	return board, nil
}

// UpdateBoard renames or re-describes a board; any member may do so
func (s *BoardService) UpdateBoard(ctx context.Context, boardID string, input UpdateBoardInput) (*models.Board, error) {
	if input.Name == nil && input.Description == nil {
		return nil, ErrNothingToUpdate
	}

	update := repository.BoardUpdate{Description: input.Description}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrBoardNameRequired
		}
		update.Name = &name
	}

	board, err := s.boardRepo.Update(ctx, boardID, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}

// DeleteBoard deletes the board and everything under it if the actor owns it
func (s *BoardService) DeleteBoard(ctx context.Context, boardID, actorID string) error {
	board, err := s.findBoard(ctx, boardID)
	if err != nil {
		return err
	}

	if board.OwnerID != actorID {
		return ErrNotBoardOwner
	}

	if err := s.boardRepo.Delete(ctx, boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	return nil
}

// RemoveMember removes a member from the board. The owner may remove anyone but
// themselves; other members may only leave.
func (s *BoardService) RemoveMember(ctx context.Context, boardID, actorID, userID string) error {
	board, err := s.findBoard(ctx, boardID)
	if err != nil {
		return err
	}

	if board.OwnerID == userID {
		return ErrCannotRemoveOwner
	}
	if board.OwnerID != actorID && actorID != userID {
		return ErrNotBoardOwner
	}
	if !board.HasMember(userID) {
		return ErrMemberNotOnBoard
	}

	if err := s.boardRepo.RemoveMember(ctx, boardID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *BoardService) findBoard(ctx context.Context, boardID string) (*models.Board, error) {
	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"github.com/yukikurage/minitrello-api/internal/verification"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound          = errors.New("invitation not found")
	ErrInvalidInvitationTransition = errors.New("invitation has already been answered")
	ErrAlreadyBoardMember          = errors.New("user is already a member of the board")
	ErrInvitationAlreadyPending    = errors.New("user already has a pending invitation to the board")
)

// InvitationService handles board invitations
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	boardRepo      repository.BoardRepository
	userRepo       repository.UserRepository
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(invitationRepo repository.InvitationRepository, boardRepo repository.BoardRepository, userRepo repository.UserRepository) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		boardRepo:      boardRepo,
		userRepo:       userRepo,
	}
}

// InviteInput represents input for inviting a user to a board
type InviteInput struct {
	BoardID string
	ActorID string
	Email   string
}

// Invite creates a pending invitation for a registered user. Only the board owner may invite.
func (s *InvitationService) Invite(ctx context.Context, input InviteInput) (*models.Invitation, error) {
	board, err := s.boardRepo.FindByID(ctx, input.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}

	if board.OwnerID != input.ActorID {
		return nil, ErrNotBoardOwner
	}

	invitee, err := s.userRepo.FindByEmail(ctx, verification.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if board.HasMember(invitee.ID) {
		return nil, ErrAlreadyBoardMember
	}

	if _, err := s.invitationRepo.FindPending(ctx, board.ID, invitee.ID); err == nil {
		return nil, ErrInvitationAlreadyPending
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	invitation := &models.Invitation{
		BoardID:      board.ID,
		BoardOwnerID: board.OwnerID,
		MemberID:     invitee.ID,
		MemberEmail:  invitee.Email,
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return invitation, nil
}

// ListInvitations returns the pending invitations addressed to the user
func (s *InvitationService) ListInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	invitations, err := s.invitationRepo.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// Accept accepts an invitation addressed to the user and joins the board
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID string) (*models.Invitation, error) {
	if _, err := s.findOwnInvitation(ctx, invitationID, userID); err != nil {
		return nil, err
	}

	invitation, err := s.invitationRepo.Accept(ctx, invitationID)
	if err != nil {
		return nil, s.mapTransitionError(err)
	}
	return invitation, nil
}

// Decline declines an invitation addressed to the user
func (s *InvitationService) Decline(ctx context.Context, invitationID, userID string) (*models.Invitation, error) {
	if _, err := s.findOwnInvitation(ctx, invitationID, userID); err != nil {
		return nil, err
	}

	invitation, err := s.invitationRepo.Decline(ctx, invitationID)
	if err != nil {
		return nil, s.mapTransitionError(err)
	}
	return invitation, nil
}

// findOwnInvitation hides invitations addressed to someone else
func (s *InvitationService) findOwnInvitation(ctx context.Context, invitationID, userID string) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.MemberID != userID {
		return nil, ErrInvitationNotFound
	}

	return invitation, nil
}

func (s *InvitationService) mapTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvitationClosed):
		return ErrInvalidInvitationTransition
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrInvitationNotFound
	default:
		return fmt.Errorf("failed to answer invitation: %w", err)
	}
}

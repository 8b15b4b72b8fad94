package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/utils"
)

// ErrInvitationClosed is returned when an invitation has already reached a different terminal state
var ErrInvitationClosed = errors.New("invitation repository: invitation is no longer pending")

// BoardRepository defines data access for boards and their member sets.
// Delete is the only way to remove a board; it cascades to cards, tasks and attachments.
type BoardRepository interface {
	// Create inserts the board and makes the owner its first member
	Create(ctx context.Context, board *models.Board) error

	// FindByID finds a board by ID with its members loaded
	FindByID(ctx context.Context, id string) (*models.Board, error)

	// ListByMember lists boards whose member set contains userID
	ListByMember(ctx context.Context, userID string) ([]models.Board, error)

	// Update applies a partial update and refreshes updated_at
	Update(ctx context.Context, id string, update BoardUpdate) (*models.Board, error)

	// Delete removes the board and everything under it
	Delete(ctx context.Context, id string) error

	// IsMember reports whether userID belongs to the board
	IsMember(ctx context.Context, boardID, userID string) (bool, error)

	// RemoveMember drops a user from the member set
	RemoveMember(ctx context.Context, boardID, userID string) error
}

// CardRepository defines data access for cards
type CardRepository interface {
	// Create inserts the card with tasks_count 0 and the owner as only member
	Create(ctx context.Context, card *models.Card) error

	FindByID(ctx context.Context, id string) (*models.Card, error)

	// ListByBoard lists a board's cards, newest first
	ListByBoard(ctx context.Context, boardID string) ([]models.Card, error)

	// ListByMember lists cards whose member set contains userID
	ListByMember(ctx context.Context, userID string) ([]models.Card, error)

	Update(ctx context.Context, id string, update CardUpdate) (*models.Card, error)

	// Delete removes the card and, through the task delete routine, its tasks
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines data access for tasks
type TaskRepository interface {
	// Create inserts the task, assigns its order and increments the card's tasks_count
	Create(ctx context.Context, task *models.Task) error

	FindByID(ctx context.Context, id string) (*models.Task, error)

	// ListByCard lists a card's tasks by ascending order
	ListByCard(ctx context.Context, cardID string) ([]models.Task, error)

	Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error)

	// Delete removes the task's attachments, decrements the card counter and removes the task.
	// Deleting a missing task is a no-op.
	Delete(ctx context.Context, id string) error
}

// InvitationRepository defines data access for board invitations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error

	FindByID(ctx context.Context, id string) (*models.Invitation, error)

	// FindPending finds a pending invitation for a member on a board
	FindPending(ctx context.Context, boardID, memberID string) (*models.Invitation, error)

	// ListPendingForUser lists pending invitations addressed to userID
	ListPendingForUser(ctx context.Context, userID string) ([]models.Invitation, error)

	// Accept marks the invitation accepted and adds the member to the board (set union)
	Accept(ctx context.Context, id string) (*models.Invitation, error)

	// Decline marks the invitation declined
	Decline(ctx context.Context, id string) (*models.Invitation, error)
}

// AttachmentRepository defines data access for GitHub attachments
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.GitHubAttachment) error

	FindByID(ctx context.Context, id string) (*models.GitHubAttachment, error)

	ListByTask(ctx context.Context, taskID string) ([]models.GitHubAttachment, error)

	Delete(ctx context.Context, id string) error
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, id string) (*models.User, error)

	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns one page of users and the total count
	List(ctx context.Context, q utils.PageQuery) ([]models.User, int64, error)

	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)

	// LinkGitHub stores the GitHub identity and access token of a user
	LinkGitHub(ctx context.Context, id string, link GitHubLink) error
}

// VerificationCodeRepository stores hashed e-mail verification codes
type VerificationCodeRepository interface {
	// Save replaces any existing code for the e-mail
	Save(ctx context.Context, code *models.VerificationCode) error

	FindByEmail(ctx context.Context, email string) (*models.VerificationCode, error)

	Delete(ctx context.Context, email string) error
}

// BoardUpdate lists the mutable board fields; nil means unchanged
type BoardUpdate struct {
	Name        *string
	Description *string
}

// CardUpdate lists the mutable card fields; nil means unchanged
type CardUpdate struct {
	Name        *string
	Description *string
}

// TaskUpdate lists the mutable task fields; nil means unchanged
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	ClearPriority bool
	Deadline      *time.Time
	ClearDeadline bool
	AssignedTo    *[]string
}

// UserUpdate lists the mutable user fields; e-mail is immutable
type UserUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

type GitHubLink struct {
	GitHubID    int64
	Login       string
	AccessToken string
	PhotoURL    string
}

// Repositories bundles every repository over one store
type Repositories struct {
	Boards            BoardRepository
	Cards             CardRepository
	Tasks             TaskRepository
	Invitations       InvitationRepository
	Attachments       AttachmentRepository
	Users             UserRepository
	VerificationCodes VerificationCodeRepository
}

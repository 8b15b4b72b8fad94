package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/github"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/services"
)

// responder maps service errors onto the envelope
type responder struct {
	log *logger.Logger
	// expose adds provider error details to upstream failures (non-production only)
	expose bool
}

func (r responder) respondError(c *gin.Context, err error) {
	switch {
	// boards
	case errors.Is(err, services.ErrBoardNotFound):
		apierrors.NotFound(c, "Board not found")
	case errors.Is(err, services.ErrNotBoardMember):
		apierrors.Forbidden(c, "You are not a member of this board")
	case errors.Is(err, services.ErrNotBoardOwner):
		apierrors.Forbidden(c, "Only the board owner can perform this action")
	case errors.Is(err, services.ErrBoardNameRequired):
		apierrors.BadRequest(c, "Board name is required")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.BadRequest(c, "The board owner cannot be removed")
	case errors.Is(err, services.ErrMemberNotOnBoard):
		apierrors.NotFound(c, "Member not found on this board")
	case errors.Is(err, services.ErrNothingToUpdate):
		apierrors.BadRequest(c, "No fields to update")

	// cards and tasks
	case errors.Is(err, services.ErrCardNotFound):
		apierrors.NotFound(c, "Card not found")
	case errors.Is(err, services.ErrCardNameRequired):
		apierrors.BadRequest(c, "Card name is required")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title is required")
	case errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequest(c, "Title cannot be empty")
	case errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority):
		apierrors.BadRequest(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrInvalidTaskAssignee):
		apierrors.BadRequest(c, "Assigned users must be members of the board")

	// AI drafts
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAITextRequired):
		apierrors.BadRequest(c, "Text is required")
	case errors.Is(err, services.ErrAITextTooLong):
		apierrors.BadRequest(c, "Text is too long")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrAIGeneration):
		r.upstream(c, "Failed to generate tasks", err)

	// invitations
	case errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, "Invitation not found")
	case errors.Is(err, services.ErrInvalidInvitationTransition):
		apierrors.BadRequest(c, "Invitation has already been answered")
	case errors.Is(err, services.ErrAlreadyBoardMember):
		apierrors.Conflict(c, "User is already a member of this board")
	case errors.Is(err, services.ErrInvitationAlreadyPending):
		apierrors.Conflict(c, "User already has a pending invitation to this board")

	// attachments
	case errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, "Attachment not found")
	case errors.Is(err, services.ErrInvalidAttachmentType):
		apierrors.BadRequest(c, "Type is required (pull_request, commit, or issue)")
	case errors.Is(err, services.ErrAttachmentNumber):
		apierrors.BadRequest(c, "Number is required for pull requests and issues")
	case errors.Is(err, services.ErrAttachmentSHA):
		apierrors.BadRequest(c, "SHA is required for commits")

	// users and auth
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrDisplayNameRequired):
		apierrors.BadRequest(c, "Display name cannot be empty")
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		apierrors.Conflict(c, "This email is already registered. Please sign in instead.")
	case errors.Is(err, services.ErrVerificationCodeMissing):
		apierrors.NotFound(c, "No verification code found for this email")
	case errors.Is(err, services.ErrVerificationCodeExpired):
		apierrors.BadRequest(c, "Verification code expired")
	case errors.Is(err, services.ErrVerificationCodeInvalid):
		apierrors.BadRequest(c, "Invalid verification code")
	case errors.Is(err, services.ErrEmailDelivery):
		r.upstream(c, "Failed to send verification code", err)
	case errors.Is(err, services.ErrGitHubNotConfigured):
		apierrors.ServiceUnavailable(c, "GitHub sign-in is not configured")
	case errors.Is(err, services.ErrGitHubNotConnected):
		apierrors.NotFound(c, "GitHub not connected. Please sign in with GitHub first.")
	case errors.Is(err, services.ErrGitHubEmailUnavailable):
		apierrors.BadRequest(c, "Your GitHub account has no verified email address")
	case errors.Is(err, github.ErrUpstream):
		r.upstream(c, "GitHub request failed", err)

	default:
		r.log.WithError(err).Errorw("Unhandled error", "path", c.FullPath())
		apierrors.InternalError(c, "Internal server error")
	}
}

func (r responder) upstream(c *gin.Context, message string, err error) {
	r.log.WithError(err).Warn(message)
	apierrors.Upstream(c, message, err, r.expose)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

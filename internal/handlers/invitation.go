package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/services"
)

type InvitationHandler struct {
	responder
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService, log *logger.Logger) *InvitationHandler {
	return &InvitationHandler{
		responder:         responder{log: log.WithComponent("invitations")},
		invitationService: invitationService,
	}
}

// Invite invites a registered user, by e-mail, to the board
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	invitation, err := h.invitationService.Invite(c.Request.Context(), services.InviteInput{
		BoardID: c.Param("boardId"),
		ActorID: userID,
		Email:   req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, invitation)
}

// ListInvitations returns the caller's pending invitations
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	invitations, err := h.invitationService.ListInvitations(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, invitations)
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	invitation, err := h.invitationService.Accept(c.Request.Context(), c.Param("invitationId"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, invitation)
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	invitation, err := h.invitationService.Decline(c.Request.Context(), c.Param("invitationId"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, invitation)
}

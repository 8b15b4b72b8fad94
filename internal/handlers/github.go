package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/services"
)

// GitHubHandler serves repository browsing and task attachments
type GitHubHandler struct {
	responder
	githubService     *services.GitHubService
	attachmentService *services.AttachmentService
}

func NewGitHubHandler(githubService *services.GitHubService, attachmentService *services.AttachmentService, log *logger.Logger, expose bool) *GitHubHandler {
	return &GitHubHandler{
		responder:         responder{log: log.WithComponent("github"), expose: expose},
		githubService:     githubService,
		attachmentService: attachmentService,
	}
}

// ListRepositories lists the caller's repositories, most recently updated first
func (h *GitHubHandler) ListRepositories(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	repos, err := h.githubService.ListRepositories(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, repos)
}

// RepositoryInfo returns branches, pull requests, issues and commits of :owner/:repo
func (h *GitHubHandler) RepositoryInfo(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	info, err := h.githubService.RepositoryInfo(c.Request.Context(), userID, c.Param("owner"), c.Param("repo"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, info)
}

// Attach links a pull request, commit or issue to a task
func (h *GitHubHandler) Attach(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.AttachGitHubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Type == "" {
			apierrors.BadRequest(c, "Type is required (pull_request, commit, or issue)")
			return
		}
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	attachment, err := h.attachmentService.Attach(c.Request.Context(), services.AttachInput{
		BoardID:   c.Param("boardId"),
		CardID:    c.Param("cardId"),
		TaskID:    c.Param("taskId"),
		Type:      models.GitHubAttachmentType(req.Type),
		Number:    req.Number,
		SHA:       req.SHA,
		Title:     req.Title,
		URL:       req.URL,
		CreatedBy: userID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, dto.ToAttachmentDTO(*attachment))
}

func (h *GitHubHandler) ListAttachments(c *gin.Context) {
	attachments, err := h.attachmentService.ListAttachments(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), c.Param("taskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToAttachmentDTOs(attachments))
}

func (h *GitHubHandler) RemoveAttachment(c *gin.Context) {
	if err := h.attachmentService.RemoveAttachment(c.Request.Context(), c.Param("taskId"), c.Param("attachmentId")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

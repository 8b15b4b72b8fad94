package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/services"
)

type BoardHandler struct {
	responder
	boardService *services.BoardService
	metrics      *metrics.Metrics
}

func NewBoardHandler(boardService *services.BoardService, m *metrics.Metrics, log *logger.Logger) *BoardHandler {
	return &BoardHandler{
		responder:    responder{log: log.WithComponent("boards")},
		boardService: boardService,
		metrics:      m,
	}
}

// CreateBoard creates a board owned by the caller
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), services.CreateBoardInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, board)
}

// ListBoards returns every board the caller is a member of
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	boards, err := h.boardService.ListBoards(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, boards)
}

// GetBoard returns the board loaded by RequireBoardAccess
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		apierrors.InternalError(c, "Board not found in context")
		return
	}

	dto.OK(c, board)
}

func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	var req dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	board, err := h.boardService.UpdateBoard(c.Request.Context(), c.Param("boardId"), services.UpdateBoardInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, board)
}

// DeleteBoard removes the board with all of its cards, tasks, invitations and attachments
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.boardService.DeleteBoard(c.Request.Context(), c.Param("boardId"), userID); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.DeleteCompleted("board")

	dto.Message(c, "Board deleted successfully")
}

// RemoveMember removes :userId from the board; members may remove themselves
func (h *BoardHandler) RemoveMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.boardService.RemoveMember(c.Request.Context(), c.Param("boardId"), userID, c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}

	dto.Message(c, "Member removed successfully")
}

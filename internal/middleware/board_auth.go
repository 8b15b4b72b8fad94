package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/constants"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/services"
)

// RequireBoardAccess checks that the caller is a member of :boardId and loads the board
func RequireBoardAccess(boards *services.BoardService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		board, err := boards.GetBoard(c.Request.Context(), c.Param("boardId"), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrBoardNotFound):
				apierrors.NotFound(c, "Board not found")
			case errors.Is(err, services.ErrNotBoardMember):
				log.LogSecurityEvent("board_access_denied", userID, c.ClientIP(), map[string]interface{}{
					"board_id": c.Param("boardId"),
				})
				apierrors.Forbidden(c, "You are not a member of this board")
			default:
				log.WithError(err).Error("Failed to load board")
				apierrors.InternalError(c, "Failed to load board")
			}
			return
		}

		c.Set(constants.ContextKeyBoard, board)
		c.Next()
	}
}

// RequireBoardOwner must run after RequireBoardAccess
func RequireBoardOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		board, exists := GetBoard(c)
		if !exists {
			apierrors.Forbidden(c, "Board access required")
			return
		}

		userID, _ := GetUserID(c)
		if board.OwnerID != userID {
			apierrors.Forbidden(c, "Only the board owner can perform this action")
			return
		}

		c.Next()
	}
}

// GetBoard returns the board loaded by RequireBoardAccess
func GetBoard(c *gin.Context) (*models.Board, bool) {
	value, exists := c.Get(constants.ContextKeyBoard)
	if !exists {
		return nil, false
	}
	board, ok := value.(*models.Board)
	return board, ok
}

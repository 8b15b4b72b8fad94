package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/services"
	"github.com/yukikurage/minitrello-api/internal/utils"
)

type UserHandler struct {
	responder
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		responder:   responder{log: log.WithComponent("users")},
		userService: userService,
	}
}

// ListUsers returns one page of users for the invite picker
func (h *UserHandler) ListUsers(c *gin.Context) {
	q := utils.ParsePageQuery(c, constants.MaxUserPageSize)

	users, total, err := h.userService.ListUsers(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToUserListResponse(users, q.Meta(total)))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToUserDTO(*user))
}

// UpdateMe changes the caller's display name
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	user, err := h.userService.UpdateDisplayName(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToUserDTO(*user))
}

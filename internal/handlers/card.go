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

type CardHandler struct {
	responder
	cardService *services.CardService
	metrics     *metrics.Metrics
}

func NewCardHandler(cardService *services.CardService, m *metrics.Metrics, log *logger.Logger) *CardHandler {
	return &CardHandler{
		responder:   responder{log: log.WithComponent("cards")},
		cardService: cardService,
		metrics:     m,
	}
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), services.CreateCardInput{
		BoardID:     c.Param("boardId"),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, card)
}

// ListCards returns the cards of a board, newest first
func (h *CardHandler) ListCards(c *gin.Context) {
	cards, err := h.cardService.ListCards(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, cards)
}

// ListMyCards returns the cards the caller is a member of, across boards
func (h *CardHandler) ListMyCards(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	cards, err := h.cardService.ListMemberCards(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, cards)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.cardService.GetCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	card, err := h.cardService.UpdateCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), services.UpdateCardInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, card)
}

// DeleteCard removes the card with its tasks and their attachments
func (h *CardHandler) DeleteCard(c *gin.Context) {
	if err := h.cardService.DeleteCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId")); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.DeleteCompleted("card")

	dto.Message(c, "Card deleted successfully")
}

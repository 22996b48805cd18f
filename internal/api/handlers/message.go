package handlers

import (
	"net/http"
	"strconv"

	"wconnect-service/internal/api/middleware"
	"wconnect-service/internal/models"
	"wconnect-service/internal/services"
	"wconnect-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(msgSvc *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: msgSvc}
}

// Send godoc
// @Summary Send a message
// @Description Persist a message in a conversation the caller participates in
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SendMessageRequest true "Message"
// @Success 201 {object} models.MessageResponse "Persisted message"
// @Failure 400 {object} models.ErrorResponse "Malformed body or empty content"
// @Failure 403 {object} models.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} models.ErrorResponse "Conversation not found"
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "conversationId is required")
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// History godoc
// @Summary Get conversation history
// @Description List all messages in a conversation in ascending creation order. Pure query; call the read endpoint to sweep unread messages.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {array} models.MessageResponse "Messages"
// @Failure 403 {object} models.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} models.ErrorResponse "Conversation not found"
// @Router /messages/conversation/{id} [get]
func (h *MessageHandler) History(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	messages, err := h.messageService.History(c.Request.Context(), uint(conversationID), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkRead godoc
// @Summary Mark a conversation read
// @Description Sweep the other participants' unread messages to read and notify each sender's room. Idempotent.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} models.MarkReadResponse "Number of messages swept"
// @Failure 403 {object} models.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} models.ErrorResponse "Conversation not found"
// @Router /messages/conversation/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	read, err := h.messageService.MarkRead(c.Request.Context(), uint(conversationID), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MarkReadResponse{
		ConversationID: uint(conversationID),
		Read:           read,
	})
}

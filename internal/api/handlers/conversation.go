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

type ConversationHandler struct {
	conversationService *services.ConversationService
	messageService      *services.MessageService
}

func NewConversationHandler(convSvc *services.ConversationService, msgSvc *services.MessageService) *ConversationHandler {
	return &ConversationHandler{conversationService: convSvc, messageService: msgSvc}
}

// GetOrCreateDirect godoc
// @Summary Get or create a direct conversation
// @Description Get the conversation with another user, creating it on first contact. Concurrent first contacts converge on one conversation.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateDirectConversationRequest true "Other participant"
// @Success 200 {object} models.ConversationResponse "Conversation with populated participants"
// @Failure 400 {object} models.ErrorResponse "Self conversation or malformed body"
// @Failure 404 {object} models.ErrorResponse "Other user not found"
// @Router /conversations/direct [post]
func (h *ConversationHandler) GetOrCreateDirect(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.CreateDirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userId is required")
		return
	}

	conv, err := h.conversationService.GetOrCreateDirect(c.Request.Context(), userID, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetGlobal godoc
// @Summary Get the global conversation
// @Description Get the shared world chat, creating it on first access
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ConversationResponse "Global conversation"
// @Router /conversations/global [get]
func (h *ConversationHandler) GetGlobal(c *gin.Context) {
	conv, err := h.conversationService.GetOrCreateGlobal(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// List godoc
// @Summary List the caller's conversations
// @Description List direct conversations the caller participates in, most recently active first
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ConversationResponse "Conversations"
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	convs, err := h.conversationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

// Clear godoc
// @Summary Clear a conversation
// @Description Delete all messages in a direct conversation. Participants only; the global conversation cannot be cleared.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} map[string]interface{} "Acknowledgement"
// @Failure 403 {object} models.ErrorResponse "Not a participant or global conversation"
// @Failure 404 {object} models.ErrorResponse "Conversation not found"
// @Router /conversations/{id}/messages [delete]
func (h *ConversationHandler) Clear(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conversation id")
		return
	}

	if err := h.messageService.Clear(c.Request.Context(), uint(conversationID), userID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadchat/internal/app"
	"leadchat/internal/transport/http/middleware"
	"leadchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateConversationRequest struct {
	Title  string `json:"title" binding:"required,max=256"`
	UserID *uint  `json:"userId"`
}

type UpdateConversationRequest struct {
	Title string `json:"title" binding:"required,max=256"`
}

type SendMessageRequest struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	conversations, err := h.chatService.ListConversations()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	conversation, err := h.chatService.GetConversation(id)
	if err != nil {
		if errors.Is(err, app.ErrConversationNotFound) {
			response.Error(c, http.StatusNotFound, "Conversation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to fetch conversation")
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid conversation data")
		return
	}

	userID := req.UserID
	if userID == nil {
		// A logged-in caller owns the conversation even when the body
		// omits userId.
		if authedID, ok := middleware.UserIDFromContext(c); ok {
			userID = &authedID
		}
	}

	conversation, err := h.chatService.CreateConversation(app.CreateConversationInput{
		Title:  req.Title,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "Invalid conversation data")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

func (h *ChatHandler) UpdateConversation(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	var req UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Title is required")
		return
	}

	conversation, err := h.chatService.RenameConversation(id, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Title is required")
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, "Conversation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update conversation")
		}
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteConversation(id); err != nil {
		if errors.Is(err, app.ErrConversationNotFound) {
			response.Error(c, http.StatusNotFound, "Conversation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}
	response.Message(c, http.StatusOK, "Conversation deleted successfully")
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(id)
	if err != nil {
		if errors.Is(err, app.ErrConversationNotFound) {
			response.Error(c, http.StatusNotFound, "Conversation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Message content is required")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		ConversationID: id,
		Content:        req.Content,
		Files:          req.Files,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, "Message content is required")
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, "Conversation not found")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to process message")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func conversationID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusNotFound, "Conversation not found")
		return 0, false
	}
	return uint(id64), true
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadchat/internal/app"
	"leadchat/internal/transport/http/response"
)

type ProspectHandler struct {
	prospectService *app.ProspectService
}

type CreateProspectRequest struct {
	Name           string `json:"name" binding:"required,max=128"`
	Email          string `json:"email" binding:"required,max=128"`
	Phone          string `json:"phone" binding:"max=32"`
	ConversationID *uint  `json:"conversationId"`
}

func NewProspectHandler(prospectService *app.ProspectService) *ProspectHandler {
	return &ProspectHandler{prospectService: prospectService}
}

func (h *ProspectHandler) Create(c *gin.Context) {
	var req CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid prospect data")
		return
	}

	prospect, err := h.prospectService.CreateProspect(c.Request.Context(), app.CreateProspectInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "Invalid prospect data")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create prospect")
		return
	}
	c.JSON(http.StatusCreated, prospect)
}

func (h *ProspectHandler) List(c *gin.Context) {
	prospects, err := h.prospectService.ListProspects()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch prospects")
		return
	}
	c.JSON(http.StatusOK, prospects)
}

func (h *ProspectHandler) Export(c *gin.Context) {
	data, err := h.prospectService.ExportXLSX()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to export prospects")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="prospects.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data,
	)
}

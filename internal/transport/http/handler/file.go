package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadchat/internal/app"
	"leadchat/internal/storage"
	"leadchat/internal/transport/http/response"
)

type FileHandler struct {
	fileService *app.FileService
}

type UploadResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

func NewFileHandler(fileService *app.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	record, err := h.fileService.Upload(fileHeader.Filename, mimeType, fileHeader.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTypeNotSupported):
			response.Error(c, http.StatusBadRequest, "File type not supported")
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, "File exceeds the 10MB size limit")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to upload file")
		}
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		ID:   record.Filename,
		Name: record.OriginalName,
		Size: record.Size,
		Type: record.MimeType,
		URL:  "/api/files/" + record.Filename,
	})
}

func (h *FileHandler) Serve(c *gin.Context) {
	filename := c.Param("filename")

	path, mimeType, err := h.fileService.Resolve(filename)
	if err != nil {
		response.Error(c, http.StatusNotFound, "File not found")
		return
	}

	if mimeType != "" {
		c.Header("Content-Type", mimeType)
	}
	c.File(path)
}

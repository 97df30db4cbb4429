package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/internal/app"
	"learnhub/internal/transport/http/response"
)

const maxDocumentSize = 50 << 20 // 50 MB

type DocumentHandler struct {
	documentService *app.DocumentService
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing document file (form field 'file')")
		return
	}
	if file.Size > maxDocumentSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "document too large (max 50MB)")
		return
	}
	title := c.PostForm("title")
	if title == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing required field 'title'")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer src.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), app.DocumentUploadInput{
		UserID:   userID,
		Title:    title,
		Filename: file.Filename,
		File:     src,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedDocument):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document upload failed")
		}
		return
	}

	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.documentService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	docID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	doc, err := h.documentService.Get(userID, docID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		case errors.Is(err, app.ErrAccessDenied):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch document failed")
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	docID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.documentService.Delete(userID, docID); err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		case errors.Is(err, app.ErrAccessDenied):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, nil)
}

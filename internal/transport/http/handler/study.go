package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"learnhub/internal/app"
	"learnhub/internal/transport/http/response"
)

type StudyHandler struct {
	studyService *app.StudyService
}

type ChatRequest struct {
	Message     string `json:"message" binding:"required"`
	ContextType string `json:"context_type"`
	ContextID   uint   `json:"context_id"`
}

func NewStudyHandler(studyService *app.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

func (h *StudyHandler) Chat(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload: message is required")
		return
	}

	result, err := h.studyService.Chat(c.Request.Context(), app.ChatInput{
		UserID:      userID,
		Message:     req.Message,
		ContextType: req.ContextType,
		ContextID:   req.ContextID,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *StudyHandler) History(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.studyService.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch chat history failed")
		return
	}
	response.OK(c, history)
}

func (h *StudyHandler) Context(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	summary, err := h.studyService.ContextSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch learning context failed")
		return
	}
	response.OK(c, summary)
}

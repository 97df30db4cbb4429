package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"learnhub/internal/app"
	"learnhub/internal/repository"
	"learnhub/internal/transport/http/response"
)

const maxVideoSize = 500 << 20 // 500 MB

type VideoHandler struct {
	videoService *app.VideoService
}

type RecordWatchRequest struct {
	WatchDuration        float64 `json:"watch_duration" binding:"min=0"`
	CompletionPercentage float64 `json:"completion_percentage" binding:"min=0,max=100"`
}

func NewVideoHandler(videoService *app.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Upload accepts a multipart form: file plus title/description/subject/
// topic/level fields. Transcription and indexing are best-effort; the upload
// succeeds even when they fail.
func (h *VideoHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing video file (form field 'file')")
		return
	}
	if file.Size > maxVideoSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "video too large (max 500MB)")
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

	video, err := h.videoService.Upload(c.Request.Context(), app.VideoUploadInput{
		UserID:      userID,
		Title:       title,
		Description: c.PostForm("description"),
		Subject:     c.PostForm("subject"),
		Topic:       c.PostForm("topic"),
		Level:       c.PostForm("level"),
		Filename:    file.Filename,
		File:        src,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "video upload failed")
		}
		return
	}

	response.OK(c, video)
}

func (h *VideoHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	videos, total, err := h.videoService.List(repository.VideoFilter{
		Subject: c.Query("subject"),
		Topic:   c.Query("topic"),
		Level:   c.Query("level"),
		Offset:  skip,
		Limit:   limit,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list videos failed")
		return
	}

	response.OK(c, gin.H{
		"videos": videos,
		"total":  total,
	})
}

func (h *VideoHandler) Get(c *gin.Context) {
	videoID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid video id")
		return
	}

	video, err := h.videoService.Get(videoID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "video not found")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch video failed")
		}
		return
	}

	response.OK(c, video)
}

func (h *VideoHandler) ListMine(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	videos, err := h.videoService.ListMine(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list videos failed")
		return
	}
	response.OK(c, videos)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	videoID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid video id")
		return
	}

	if err := h.videoService.Delete(userID, videoID); err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "video not found")
		case errors.Is(err, app.ErrAccessDenied):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "access denied")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete video failed")
		}
		return
	}
	response.OK(c, nil)
}

func (h *VideoHandler) RecordWatch(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	videoID, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid video id")
		return
	}

	var req RecordWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	entry, err := h.videoService.RecordWatch(app.RecordWatchInput{
		UserID:               userID,
		VideoID:              videoID,
		WatchDuration:        req.WatchDuration,
		CompletionPercentage: req.CompletionPercentage,
	})
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "video not found")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "record watch failed")
		}
		return
	}
	response.OK(c, entry)
}

func (h *VideoHandler) WatchHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	entries, err := h.videoService.WatchHistory(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list watch history failed")
		return
	}
	response.OK(c, entries)
}

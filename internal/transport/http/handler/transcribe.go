package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/internal/jobs"
	"learnhub/internal/transport/http/response"
)

const maxAudioSize = 500 << 20 // 500 MB

type TranscribeHandler struct {
	runner *jobs.Runner
}

func NewTranscribeHandler(runner *jobs.Runner) *TranscribeHandler {
	return &TranscribeHandler{runner: runner}
}

// Submit accepts an audio or video file and enqueues an asynchronous
// transcription job. The response carries the job id to poll.
func (h *TranscribeHandler) Submit(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing media file (form field 'file')")
		return
	}
	if file.Size > maxAudioSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 500MB)")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer src.Close()

	job, err := h.runner.Submit(c.Request.Context(), file.Filename, src)
	if err != nil {
		if errors.Is(err, jobs.ErrUnsupportedFile) {
			msg := fmt.Sprintf("unsupported file type, allowed: %s", jobs.AllowedExtensionList())
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, msg)
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to enqueue transcription job")
		}
		return
	}

	response.OK(c, job)
}

func (h *TranscribeHandler) Status(c *gin.Context) {
	job, err := h.runner.Status(c.Param("job_id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "job not found")
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch job failed")
		}
		return
	}
	response.OK(c, job)
}

func (h *TranscribeHandler) Result(c *gin.Context) {
	transcript, err := h.runner.Result(c.Param("job_id"))
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrJobNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "job not found")
		case errors.Is(err, jobs.ErrJobNotReady):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch job result failed")
		}
		return
	}
	response.OK(c, transcript)
}

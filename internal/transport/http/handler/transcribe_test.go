package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/ai"
	"learnhub/internal/jobs"
	"learnhub/internal/pkg/logger"
)

type stubTranscriber struct {
	transcript *ai.Transcript
}

func (s *stubTranscriber) Transcribe(ctx context.Context, filePath, language string) (*ai.Transcript, error) {
	return s.transcript, nil
}

func newTranscribeRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runner, err := jobs.NewRunner(
		jobs.NewMemoryStore(),
		&stubTranscriber{transcript: &ai.Transcript{Text: "hello", Language: "en"}},
		1,
		t.TempDir(),
		logger.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(runner.Release)

	h := NewTranscribeHandler(runner)
	router := gin.New()
	router.POST("/api/v1/transcribe", h.Submit)
	router.GET("/api/v1/transcribe/:job_id", h.Status)
	router.GET("/api/v1/transcribe/:job_id/result", h.Result)
	return router
}

func multipartUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake media bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestTranscribeFlow(t *testing.T) {
	router := newTranscribeRouter(t)

	body, contentType := multipartUpload(t, "lecture.mp3")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 0, env.Code)

	var submitted jobs.Job
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.NotEmpty(t, submitted.ID)
	assert.Equal(t, "lecture.mp3", submitted.SourceFilename)
	assert.Equal(t, jobs.StatusQueued, submitted.Status)

	// Poll until the background pool finishes.
	deadline := time.Now().Add(3 * time.Second)
	var polled jobs.Job
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcribe/"+submitted.ID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.NoError(t, json.Unmarshal(env.Data, &polled))
		if polled.Status == jobs.StatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, jobs.StatusCompleted, polled.Status)
	assert.Equal(t, 100, polled.Progress)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcribe/"+submitted.ID+"/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var transcript ai.Transcript
	require.NoError(t, json.Unmarshal(env.Data, &transcript))
	assert.Equal(t, "hello", transcript.Text)
}

func TestTranscribeRejectsUnsupportedExtension(t *testing.T) {
	router := newTranscribeRouter(t)

	body, contentType := multipartUpload(t, "notes.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Contains(t, env.Message, ".mp3")
}

func TestTranscribeMissingFile(t *testing.T) {
	router := newTranscribeRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscribeUnknownJob(t *testing.T) {
	router := newTranscribeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcribe/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transcribe/nope/result", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Segment is one time-aligned piece of a transcript.
type Segment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// Transcript is the full speech-to-text result for one media file.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Transcriber maps a media file on disk to a transcript. Language is an
// optional hint ("" = auto-detect).
type Transcriber interface {
	Transcribe(ctx context.Context, filePath, language string) (*Transcript, error)
}

// RemoteTranscriber binds the OpenAI-compatible client to one whisper config.
type RemoteTranscriber struct {
	Client *OpenAICompatibleClient
	Config WhisperConfig
}

func (t *RemoteTranscriber) Transcribe(ctx context.Context, filePath, language string) (*Transcript, error) {
	if language == "" {
		language = t.Config.Language
	}
	return t.Client.Transcribe(ctx, t.Config, filePath, language)
}

// Transcribe uploads the media file to /audio/transcriptions and parses the
// verbose_json result (text, detected language, timestamped segments).
func (c *OpenAICompatibleClient) Transcribe(ctx context.Context, cfg WhisperConfig, filePath, language string) (*Transcript, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open media file failed: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("build transcription form failed: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy media file failed: %w", err)
	}
	if err := writer.WriteField("model", cfg.Model); err != nil {
		return nil, fmt.Errorf("write transcription form field failed: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write transcription form field failed: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("write transcription form field failed: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close transcription form failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	client := c.httpClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcription response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse transcription json failed: %w", err)
	}

	result := &Transcript{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
		Segments: make([]Segment, 0, len(parsed.Segments)),
	}
	if result.Language == "" {
		result.Language = "unknown"
	}
	for _, seg := range parsed.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return result, nil
}

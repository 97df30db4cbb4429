// Package jobs tracks long-running transcription jobs: an uploaded media
// file becomes a queued Job, a background worker moves it through
// processing into completed or failed, and HTTP callers poll its state.
package jobs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"learnhub/internal/ai"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobNotReady     = errors.New("transcription not ready")
	ErrUnsupportedFile = errors.New("file type not supported")
)

// allowedExtensions is the audio/video allow-list for transcription uploads.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".m4a":  true,
	".webm": true,
	".ogg":  true,
	".flac": true,
}

// AllowedExtensionList returns the sorted allow-list for error messages.
func AllowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// Job is one transcription request. Mutated only by the background task that
// owns it; transitions are one-way (queued -> processing -> completed|failed).
type Job struct {
	ID             string         `json:"job_id"`
	SourceFilename string         `json:"filename"`
	Status         Status         `json:"status"`
	Progress       int            `json:"progress"` // 0-100
	Result         *ai.Transcript `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
}

func validateExtension(ext string) error {
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFile, ext, AllowedExtensionList())
	}
	return nil
}

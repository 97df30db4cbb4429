// Package media wraps the ffmpeg/ffprobe system binaries for video probing
// and thumbnail generation. Both binaries must be present in PATH of the
// serving runtime.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultThumbnailOffset is where the representative frame is taken from.
const DefaultThumbnailOffset = 1.0 // seconds

type Tools struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

func NewTools() *Tools {
	return &Tools{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		timeout:     2 * time.Minute,
	}
}

// AssertReady fails fast when the required binaries are missing.
func (t *Tools) AssertReady() error {
	for _, bin := range []string{t.ffmpegPath, t.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

// Duration returns the media duration in seconds.
func (t *Tools) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration failed: %w", err)
	}
	return duration, nil
}

// Thumbnail writes a single representative frame of videoPath to outPath.
// The frame is taken at offsetSec; when the offset lies beyond the video's
// duration the true first frame is used instead.
func (t *Tools) Thumbnail(ctx context.Context, videoPath, outPath string, offsetSec float64) error {
	if offsetSec < 0 {
		offsetSec = DefaultThumbnailOffset
	}
	if duration, err := t.Duration(ctx, videoPath); err == nil && offsetSec > duration {
		offsetSec = 0
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-ss", strconv.FormatFloat(offsetSec, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

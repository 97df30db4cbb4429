package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"learnhub/internal/ai"
	"learnhub/internal/contextstore"
	"learnhub/internal/media"
	"learnhub/internal/model"
	"learnhub/internal/pkg/logger"
	"learnhub/internal/repository"
)

// VideoStore is the persistence surface the video service needs.
type VideoStore interface {
	Create(video *model.Video) error
	GetByID(id uint) (*model.Video, error)
	List(filter repository.VideoFilter) ([]model.Video, int64, error)
	ListByUploaderID(uploaderID uint) ([]model.Video, error)
	UpdateTranscript(id uint, transcript string) error
	IncrementViews(id uint) error
	Delete(id uint) error
}

type WatchHistoryStore interface {
	Upsert(entry *model.WatchHistory) error
	ListByUserID(userID uint, limit int) ([]model.WatchHistory, error)
}

// MediaProber probes and snapshots video files; *media.Tools in production.
type MediaProber interface {
	Duration(ctx context.Context, path string) (float64, error)
	Thumbnail(ctx context.Context, videoPath, outPath string, offsetSec float64) error
}

type VideoService struct {
	videoRepo   VideoStore
	watchRepo   WatchHistoryStore
	mediaTools  MediaProber
	transcriber ai.Transcriber
	indexer     ContextIndexer
	uploadsRoot string
	log         *logger.Logger
}

type VideoUploadInput struct {
	UserID      uint
	Title       string
	Description string
	Subject     string
	Topic       string
	Level       string
	Filename    string
	File        io.Reader
}

type RecordWatchInput struct {
	UserID               uint
	VideoID              uint
	WatchDuration        float64
	CompletionPercentage float64
}

func NewVideoService(
	videoRepo VideoStore,
	watchRepo WatchHistoryStore,
	mediaTools MediaProber,
	transcriber ai.Transcriber,
	indexer ContextIndexer,
	uploadsRoot string,
	log *logger.Logger,
) *VideoService {
	return &VideoService{
		videoRepo:   videoRepo,
		watchRepo:   watchRepo,
		mediaTools:  mediaTools,
		transcriber: transcriber,
		indexer:     indexer,
		uploadsRoot: uploadsRoot,
		log:         log,
	}
}

// Upload persists the video file, probes duration, snapshots a thumbnail,
// commits the record, then best-effort transcribes and indexes the
// transcript. Enrichment failures are logged; the upload still succeeds.
func (s *VideoService) Upload(ctx context.Context, input VideoUploadInput) (*model.Video, error) {
	title := strings.TrimSpace(input.Title)
	if input.UserID == 0 || title == "" || input.Filename == "" || input.File == nil {
		return nil, ErrInvalidInput
	}

	videoDir := filepath.Join(s.uploadsRoot, "videos")
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir failed: %w", err)
	}
	filename := fmt.Sprintf("%d_%s", input.UserID, filepath.Base(input.Filename))
	videoPath := filepath.Join(videoDir, filename)
	if err := saveFile(videoPath, input.File); err != nil {
		return nil, err
	}

	duration, err := s.mediaTools.Duration(ctx, videoPath)
	if err != nil {
		s.log.Warn("probe video duration failed", "path", videoPath, "error", err)
		duration = 0
	}

	thumbnailPath := s.makeThumbnail(ctx, videoPath, filename)

	video := &model.Video{
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		FilePath:      videoPath,
		ThumbnailPath: thumbnailPath,
		Duration:      duration,
		Subject:       strings.TrimSpace(input.Subject),
		Topic:         strings.TrimSpace(input.Topic),
		Level:         strings.TrimSpace(input.Level),
		UploaderID:    input.UserID,
	}
	if err := s.videoRepo.Create(video); err != nil {
		return nil, err
	}

	s.enrichTranscript(ctx, video)
	return video, nil
}

func (s *VideoService) makeThumbnail(ctx context.Context, videoPath, filename string) string {
	thumbDir := filepath.Join(s.uploadsRoot, "thumbnails")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		s.log.Warn("create thumbnail dir failed", "error", err)
		return ""
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	thumbPath := filepath.Join(thumbDir, stem+".jpg")
	if err := s.mediaTools.Thumbnail(ctx, videoPath, thumbPath, media.DefaultThumbnailOffset); err != nil {
		s.log.Warn("generate thumbnail failed", "path", videoPath, "error", err)
		return ""
	}
	return thumbPath
}

// enrichTranscript runs synchronous transcription and hands the result to
// the indexer. The record is already committed before this runs, so a reader
// never sees an indexed context item for a missing video.
func (s *VideoService) enrichTranscript(ctx context.Context, video *model.Video) {
	transcript, err := s.transcriber.Transcribe(ctx, video.FilePath, "")
	if err != nil {
		s.log.Error("transcribe video failed", "video_id", video.ID, "error", err)
		return
	}
	if transcript.Text == "" {
		return
	}

	if err := s.videoRepo.UpdateTranscript(video.ID, transcript.Text); err != nil {
		s.log.Error("store video transcript failed", "video_id", video.ID, "error", err)
		return
	}
	video.Transcript = transcript.Text

	if err := s.indexer.Index(ctx, contextstore.IndexRequest{
		UserID:   video.UploaderID,
		Kind:     contextstore.KindVideo,
		SourceID: video.ID,
		Content:  transcript.Text,
		Metadata: map[string]string{
			"title":   video.Title,
			"subject": video.Subject,
			"topic":   video.Topic,
		},
	}); err != nil {
		s.log.Error("index video transcript failed", "video_id", video.ID, "error", err)
	}
}

func (s *VideoService) List(filter repository.VideoFilter) ([]model.Video, int64, error) {
	return s.videoRepo.List(filter)
}

// Get returns the video and counts the view.
func (s *VideoService) Get(id uint) (*model.Video, error) {
	video, err := s.videoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrNotFound
	}
	if err := s.videoRepo.IncrementViews(id); err != nil {
		s.log.Warn("increment video views failed", "video_id", id, "error", err)
	} else {
		video.ViewsCount++
	}
	return video, nil
}

func (s *VideoService) ListMine(userID uint) ([]model.Video, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.videoRepo.ListByUploaderID(userID)
}

func (s *VideoService) Delete(userID, videoID uint) error {
	video, err := s.videoRepo.GetByID(videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return ErrNotFound
	}
	if video.UploaderID != userID {
		return ErrAccessDenied
	}

	for _, path := range []string{video.FilePath, video.ThumbnailPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove video file failed", "path", path, "error", err)
		}
	}
	return s.videoRepo.Delete(videoID)
}

func (s *VideoService) RecordWatch(input RecordWatchInput) (*model.WatchHistory, error) {
	if input.UserID == 0 || input.VideoID == 0 {
		return nil, ErrInvalidInput
	}
	video, err := s.videoRepo.GetByID(input.VideoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrNotFound
	}

	entry := &model.WatchHistory{
		UserID:               input.UserID,
		VideoID:              input.VideoID,
		WatchDuration:        input.WatchDuration,
		CompletionPercentage: input.CompletionPercentage,
	}
	if err := s.watchRepo.Upsert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *VideoService) WatchHistory(userID uint) ([]model.WatchHistory, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.watchRepo.ListByUserID(userID, 0)
}

func saveFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save upload failed: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("save upload failed: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("save upload failed: %w", err)
	}
	return nil
}

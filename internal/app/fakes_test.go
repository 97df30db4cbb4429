package app

import (
	"context"
	"fmt"
	"time"

	"learnhub/internal/contextstore"
	"learnhub/internal/model"
	"learnhub/internal/repository"
)

// In-memory fakes for the store interfaces, shared across the service tests.

type fakeVideoStore struct {
	videos map[uint]*model.Video
	nextID uint
	err    error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[uint]*model.Video), nextID: 1}
}

func (s *fakeVideoStore) Create(video *model.Video) error {
	if s.err != nil {
		return s.err
	}
	video.ID = s.nextID
	s.nextID++
	copied := *video
	s.videos[video.ID] = &copied
	return nil
}

func (s *fakeVideoStore) GetByID(id uint) (*model.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	video, ok := s.videos[id]
	if !ok {
		return nil, nil
	}
	copied := *video
	return &copied, nil
}

func (s *fakeVideoStore) List(filter repository.VideoFilter) ([]model.Video, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]model.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if filter.Subject != "" && v.Subject != filter.Subject {
			continue
		}
		if filter.Topic != "" && v.Topic != filter.Topic {
			continue
		}
		if filter.Level != "" && v.Level != filter.Level {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (s *fakeVideoStore) ListByUploaderID(uploaderID uint) ([]model.Video, error) {
	out := make([]model.Video, 0)
	for _, v := range s.videos {
		if v.UploaderID == uploaderID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) UpdateTranscript(id uint, transcript string) error {
	if s.err != nil {
		return s.err
	}
	if v, ok := s.videos[id]; ok {
		v.Transcript = transcript
	}
	return nil
}

func (s *fakeVideoStore) IncrementViews(id uint) error {
	if v, ok := s.videos[id]; ok {
		v.ViewsCount++
	}
	return nil
}

func (s *fakeVideoStore) Delete(id uint) error {
	delete(s.videos, id)
	return nil
}

type fakeWatchStore struct {
	entries []model.WatchHistory
}

func (s *fakeWatchStore) Upsert(entry *model.WatchHistory) error {
	for i := range s.entries {
		if s.entries[i].UserID == entry.UserID && s.entries[i].VideoID == entry.VideoID {
			entry.ID = s.entries[i].ID
			entry.LastWatchedAt = time.Now()
			s.entries[i] = *entry
			return nil
		}
	}
	entry.ID = uint(len(s.entries) + 1)
	entry.LastWatchedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeWatchStore) ListByUserID(userID uint, limit int) ([]model.WatchHistory, error) {
	out := make([]model.WatchHistory, 0)
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDocumentStore struct {
	docs   map[uint]*model.Document
	nextID uint
	err    error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[uint]*model.Document), nextID: 1}
}

func (s *fakeDocumentStore) Create(doc *model.Document) error {
	if s.err != nil {
		return s.err
	}
	doc.ID = s.nextID
	s.nextID++
	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *fakeDocumentStore) GetByID(id uint) (*model.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocumentStore) ListByOwnerID(ownerID uint) ([]model.Document, error) {
	out := make([]model.Document, 0)
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDocumentStore) Delete(id uint) error {
	delete(s.docs, id)
	return nil
}

type fakeChatStore struct {
	entries []model.ChatHistory
	err     error
}

func (s *fakeChatStore) Create(entry *model.ChatHistory) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = uint(len(s.entries) + 1)
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeChatStore) ListRecent(userID uint, limit int) ([]model.ChatHistory, error) {
	out := make([]model.ChatHistory, 0)
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeIndexer struct {
	requests []contextstore.IndexRequest
	err      error
}

func (f *fakeIndexer) Index(ctx context.Context, req contextstore.IndexRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) Text(path, fileType string) string {
	return f.text
}

type fakeProber struct {
	duration float64
	err      error
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.duration, nil
}

func (f *fakeProber) Thumbnail(ctx context.Context, videoPath, outPath string, offsetSec float64) error {
	return f.err
}

type fakeHistoryCache struct {
	stored      map[string][]model.ChatHistory
	invalidated int
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{stored: make(map[string][]model.ChatHistory)}
}

func cacheKey(userID uint, limit int) string {
	return fmt.Sprintf("%d:%d", userID, limit)
}

func (c *fakeHistoryCache) GetHistory(ctx context.Context, userID uint, limit int) ([]model.ChatHistory, bool, error) {
	entries, ok := c.stored[cacheKey(userID, limit)]
	return entries, ok, nil
}

func (c *fakeHistoryCache) SetHistory(ctx context.Context, userID uint, limit int, entries []model.ChatHistory) error {
	c.stored[cacheKey(userID, limit)] = entries
	return nil
}

func (c *fakeHistoryCache) InvalidateHistory(ctx context.Context, userID uint) error {
	c.invalidated++
	c.stored = make(map[string][]model.ChatHistory)
	return nil
}

package app

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"learnhub/internal/ai"
	"learnhub/internal/contextstore"
	"learnhub/internal/model"
	"learnhub/internal/pkg/logger"
)

const chatTopK = 3

type ChatHistoryStore interface {
	Create(entry *model.ChatHistory) error
	ListRecent(userID uint, limit int) ([]model.ChatHistory, error)
}

// ChatHistoryCache is the optional read-through cache for history windows.
type ChatHistoryCache interface {
	GetHistory(ctx context.Context, userID uint, limit int) ([]model.ChatHistory, bool, error)
	SetHistory(ctx context.Context, userID uint, limit int, entries []model.ChatHistory) error
	InvalidateHistory(ctx context.Context, userID uint) error
}

// StudyService is the retrieval-augmented study assistant: it embeds the
// query, retrieves the user's nearest context, composes a reply and appends
// the turn to chat history.
type StudyService struct {
	embedder  ai.Embedder
	store     contextstore.Store
	responder ai.Responder
	chatRepo  ChatHistoryStore
	cache     ChatHistoryCache // nil = no caching
	videoRepo VideoStore
	watchRepo WatchHistoryStore
	docRepo   DocumentStore
	log       *logger.Logger
}

type ChatInput struct {
	UserID      uint
	Message     string
	ContextType string // optional caller override, bookkeeping only
	ContextID   uint
}

type ChatResult struct {
	Response    string  `json:"response"`
	ContextUsed *string `json:"context_used"`
}

// WatchedVideoContext summarizes one transcribed video the user watched.
type WatchedVideoContext struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	Subject    string `json:"subject"`
	Topic      string `json:"topic"`
}

type DocumentContext struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type LearningContext struct {
	WatchedVideos []WatchedVideoContext `json:"watched_videos"`
	Documents     []DocumentContext     `json:"documents"`
}

func NewStudyService(
	embedder ai.Embedder,
	store contextstore.Store,
	responder ai.Responder,
	chatRepo ChatHistoryStore,
	cache ChatHistoryCache,
	videoRepo VideoStore,
	watchRepo WatchHistoryStore,
	docRepo DocumentStore,
	log *logger.Logger,
) *StudyService {
	return &StudyService{
		embedder:  embedder,
		store:     store,
		responder: responder,
		chatRepo:  chatRepo,
		cache:     cache,
		videoRepo: videoRepo,
		watchRepo: watchRepo,
		docRepo:   docRepo,
		log:       log,
	}
}

// Chat always produces a response: retrieval or embedding failures degrade
// to the no-context onboarding reply instead of surfacing an error. The turn
// is appended to chat history either way.
func (s *StudyService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	if input.UserID == 0 || message == "" {
		return nil, ErrInvalidInput
	}

	contexts := s.retrieve(ctx, input.UserID, message)
	response := s.responder.Respond(message, contexts)

	var contextUsed *string
	if len(contexts) > 0 {
		used := contexts[0].Metadata["type"]
		if used == "" {
			used = "general"
		}
		contextUsed = &used
	}

	// Caller-supplied context overrides the inferred one, but only for the
	// stored row; it never changes what retrieval fed the responder.
	contextType := strings.TrimSpace(input.ContextType)
	if contextType == "" && contextUsed != nil {
		contextType = *contextUsed
	}

	entry := &model.ChatHistory{
		UserID:      input.UserID,
		Message:     message,
		Response:    response,
		ContextType: contextType,
		ContextID:   input.ContextID,
	}
	if err := s.chatRepo.Create(entry); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateHistory(ctx, input.UserID); err != nil {
			s.log.Warn("invalidate history cache failed", "user_id", input.UserID, "error", err)
		}
	}

	return &ChatResult{Response: response, ContextUsed: contextUsed}, nil
}

func (s *StudyService) retrieve(ctx context.Context, userID uint, query string) []contextstore.Result {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("embed chat query failed", "user_id", userID, "error", err)
		return nil
	}
	results, err := s.store.Query(ctx, userID, vector, chatTopK)
	if err != nil {
		s.log.Warn("query context store failed", "user_id", userID, "error", err)
		return nil
	}
	return results
}

// History returns the most recent limit turns, oldest first.
func (s *StudyService) History(ctx context.Context, userID uint, limit int) ([]model.ChatHistory, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	if s.cache != nil {
		entries, hit, err := s.cache.GetHistory(ctx, userID, limit)
		if err != nil {
			s.log.Warn("read history cache failed", "user_id", userID, "error", err)
		} else if hit {
			return entries, nil
		}
	}

	entries, err := s.chatRepo.ListRecent(userID, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetHistory(ctx, userID, limit, entries); err != nil {
			s.log.Warn("write history cache failed", "user_id", userID, "error", err)
		}
	}
	return entries, nil
}

// ContextSummary reports the user's recent transcribed videos and extracted
// documents; both halves are fetched concurrently.
func (s *StudyService) ContextSummary(ctx context.Context, userID uint) (*LearningContext, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	summary := &LearningContext{
		WatchedVideos: []WatchedVideoContext{},
		Documents:     []DocumentContext{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		watches, err := s.watchRepo.ListByUserID(userID, 10)
		if err != nil {
			return err
		}
		for _, watch := range watches {
			video, err := s.videoRepo.GetByID(watch.VideoID)
			if err != nil {
				return err
			}
			if video == nil || video.Transcript == "" {
				continue
			}
			summary.WatchedVideos = append(summary.WatchedVideos, WatchedVideoContext{
				ID:         video.ID,
				Title:      video.Title,
				Transcript: video.Transcript,
				Subject:    video.Subject,
				Topic:      video.Topic,
			})
		}
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		docs, err := s.docRepo.ListByOwnerID(userID)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if doc.Content == "" {
				continue
			}
			summary.Documents = append(summary.Documents, DocumentContext{
				ID:      doc.ID,
				Title:   doc.Title,
				Content: doc.Content,
				Type:    doc.FileType,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/ai"
	"learnhub/internal/contextstore"
	"learnhub/internal/model"
	"learnhub/internal/pkg/logger"
)

func newStudyService(
	store contextstore.Store,
	chatStore *fakeChatStore,
	cache ChatHistoryCache,
	videoStore *fakeVideoStore,
	watchStore *fakeWatchStore,
	docStore *fakeDocumentStore,
) *StudyService {
	return NewStudyService(
		&fakeEmbedder{},
		store,
		ai.NewTemplateResponder(),
		chatStore,
		cache,
		videoStore,
		watchStore,
		docStore,
		logger.NewNop(),
	)
}

func TestChatNewUserGetsOnboarding(t *testing.T) {
	chatStore := &fakeChatStore{}
	svc := newStudyService(contextstore.NewMemoryStore(), chatStore, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	result, err := svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "what is gravity?"})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "I'm your AI study assistant!")
	assert.Nil(t, result.ContextUsed)

	// The turn lands in history even without context.
	require.Len(t, chatStore.entries, 1)
	assert.Equal(t, "what is gravity?", chatStore.entries[0].Message)
	assert.Equal(t, result.Response, chatStore.entries[0].Response)
}

func TestChatUsesRetrievedContext(t *testing.T) {
	store := contextstore.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), 1, contextstore.Item{
		Kind:     contextstore.KindVideo,
		SourceID: 5,
		Content:  "gravity pulls objects together",
		Vector:   []float32{0.1, 0.2, 0.3},
		Metadata: map[string]string{"type": "video", "title": "Gravity 101"},
	}))

	chatStore := &fakeChatStore{}
	svc := newStudyService(store, chatStore, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	result, err := svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "explain gravity"})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "gravity pulls objects together")
	require.NotNil(t, result.ContextUsed)
	assert.Equal(t, "video", *result.ContextUsed)

	require.Len(t, chatStore.entries, 1)
	assert.Equal(t, "video", chatStore.entries[0].ContextType)
}

func TestChatDoesNotLeakOtherUsersContext(t *testing.T) {
	store := contextstore.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), 2, contextstore.Item{
		Kind:     contextstore.KindDocument,
		SourceID: 1,
		Content:  "secret study notes",
		Vector:   []float32{0.1, 0.2, 0.3},
		Metadata: map[string]string{"type": "pdf"},
	}))

	svc := newStudyService(store, &fakeChatStore{}, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	result, err := svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "any notes?"})
	require.NoError(t, err)
	assert.NotContains(t, result.Response, "secret study notes")
	assert.Nil(t, result.ContextUsed)
}

func TestChatCallerContextOverridesStoredRow(t *testing.T) {
	store := contextstore.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), 1, contextstore.Item{
		Kind:     contextstore.KindVideo,
		SourceID: 5,
		Content:  "content",
		Vector:   []float32{0.1, 0.2, 0.3},
		Metadata: map[string]string{"type": "video"},
	}))

	chatStore := &fakeChatStore{}
	svc := newStudyService(store, chatStore, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	result, err := svc.Chat(context.Background(), ChatInput{
		UserID:      1,
		Message:     "q",
		ContextType: "document",
		ContextID:   9,
	})
	require.NoError(t, err)
	// The inferred context still drives the API answer.
	require.NotNil(t, result.ContextUsed)
	assert.Equal(t, "video", *result.ContextUsed)
	// The stored row keeps the caller's bookkeeping override.
	require.Len(t, chatStore.entries, 1)
	assert.Equal(t, "document", chatStore.entries[0].ContextType)
	assert.Equal(t, uint(9), chatStore.entries[0].ContextID)
}

func TestChatEmbedFailureDegradesToOnboarding(t *testing.T) {
	svc := NewStudyService(
		&fakeEmbedder{err: errors.New("embedding server down")},
		contextstore.NewMemoryStore(),
		ai.NewTemplateResponder(),
		&fakeChatStore{},
		nil,
		newFakeVideoStore(),
		&fakeWatchStore{},
		newFakeDocumentStore(),
		logger.NewNop(),
	)

	result, err := svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "hello"})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "I'm your AI study assistant!")
	assert.Nil(t, result.ContextUsed)
}

func TestChatValidation(t *testing.T) {
	svc := newStudyService(contextstore.NewMemoryStore(), &fakeChatStore{}, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	_, err := svc.Chat(context.Background(), ChatInput{UserID: 0, Message: "q"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatPersistFailurePropagates(t *testing.T) {
	chatStore := &fakeChatStore{err: errors.New("db down")}
	svc := newStudyService(contextstore.NewMemoryStore(), chatStore, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	_, err := svc.Chat(context.Background(), ChatInput{UserID: 1, Message: "q"})
	assert.Error(t, err)
}

func TestHistoryReflectsChatImmediately(t *testing.T) {
	chatStore := &fakeChatStore{}
	cache := newFakeHistoryCache()
	svc := newStudyService(contextstore.NewMemoryStore(), chatStore, cache, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	ctx := context.Background()
	_, err := svc.Chat(ctx, ChatInput{UserID: 1, Message: "first"})
	require.NoError(t, err)

	history, err := svc.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// A cached window must not mask the next turn.
	_, err = svc.Chat(ctx, ChatInput{UserID: 1, Message: "second"})
	require.NoError(t, err)

	history, err = svc.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "second", history[1].Message)
	assert.GreaterOrEqual(t, cache.invalidated, 2)
}

func TestHistoryCacheHitSkipsStore(t *testing.T) {
	chatStore := &fakeChatStore{}
	cache := newFakeHistoryCache()
	cached := []model.ChatHistory{{UserID: 1, Message: "from cache"}}
	require.NoError(t, cache.SetHistory(context.Background(), 1, 50, cached))

	svc := newStudyService(contextstore.NewMemoryStore(), chatStore, cache, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	history, err := svc.History(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "from cache", history[0].Message)
}

func TestHistoryDefaultLimit(t *testing.T) {
	chatStore := &fakeChatStore{}
	for i := 0; i < 60; i++ {
		require.NoError(t, chatStore.Create(&model.ChatHistory{UserID: 1, Message: "m", Response: "r"}))
	}
	svc := newStudyService(contextstore.NewMemoryStore(), chatStore, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	history, err := svc.History(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, history, 50)
}

func TestContextSummary(t *testing.T) {
	videoStore := newFakeVideoStore()
	require.NoError(t, videoStore.Create(&model.Video{Title: "Transcribed", Transcript: "words", Subject: "bio", Topic: "cells", UploaderID: 2}))
	require.NoError(t, videoStore.Create(&model.Video{Title: "Silent", UploaderID: 2}))

	watchStore := &fakeWatchStore{}
	require.NoError(t, watchStore.Upsert(&model.WatchHistory{UserID: 1, VideoID: 1}))
	require.NoError(t, watchStore.Upsert(&model.WatchHistory{UserID: 1, VideoID: 2}))

	docStore := newFakeDocumentStore()
	require.NoError(t, docStore.Create(&model.Document{Title: "Notes", Content: "extracted", FileType: "pdf", OwnerID: 1}))
	require.NoError(t, docStore.Create(&model.Document{Title: "Scan", Content: "", FileType: "pdf", OwnerID: 1}))

	svc := newStudyService(contextstore.NewMemoryStore(), &fakeChatStore{}, nil, videoStore, watchStore, docStore)

	summary, err := svc.ContextSummary(context.Background(), 1)
	require.NoError(t, err)

	// Untranscribed videos and unextracted documents stay out of the summary.
	require.Len(t, summary.WatchedVideos, 1)
	assert.Equal(t, "Transcribed", summary.WatchedVideos[0].Title)
	assert.Equal(t, "words", summary.WatchedVideos[0].Transcript)

	require.Len(t, summary.Documents, 1)
	assert.Equal(t, "Notes", summary.Documents[0].Title)
	assert.Equal(t, "pdf", summary.Documents[0].Type)
}

func TestContextSummaryEmptyUser(t *testing.T) {
	svc := newStudyService(contextstore.NewMemoryStore(), &fakeChatStore{}, nil, newFakeVideoStore(), &fakeWatchStore{}, newFakeDocumentStore())

	summary, err := svc.ContextSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, summary.WatchedVideos)
	assert.Empty(t, summary.Documents)
	assert.NotNil(t, summary.WatchedVideos)
	assert.NotNil(t, summary.Documents)
}

package ai

import (
	"net/http"
	"time"
)

// EmbeddingConfig holds API settings for text-embedding (OpenAI-compatible).
type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// WhisperConfig holds API settings for speech-to-text. BaseURL points at an
// OpenAI-compatible server exposing /audio/transcriptions (e.g. a local
// whisper server). Language empty means auto-detect.
type WhisperConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
}

type OpenAICompatibleClient struct {
	httpClient *http.Client
}

func NewOpenAICompatibleClient() *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// NewOpenAICompatibleClientWithHTTP allows injecting the HTTP client, mainly
// for tests against httptest servers.
func NewOpenAICompatibleClientWithHTTP(httpClient *http.Client) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{httpClient: httpClient}
}

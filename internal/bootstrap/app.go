package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"learnhub/internal/ai"
	"learnhub/internal/config"
	"learnhub/internal/contextstore"
	"learnhub/internal/extract"
	"learnhub/internal/jobs"
	"learnhub/internal/media"
	"learnhub/internal/model"
	"learnhub/internal/pkg/logger"
	mysqlClient "learnhub/internal/platform/mysql"
	rabbitmqClient "learnhub/internal/platform/rabbitmq"
	redisClient "learnhub/internal/platform/redis"
	"learnhub/internal/worker"
)

type App struct {
	Config *config.Config
	Log    *logger.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Embedder       ai.Embedder
	Transcriber    ai.Transcriber
	Responder      ai.Responder
	ContextStore   contextstore.Store
	IndexPublisher *rabbitmqClient.IndexPublisher
	IndexWorker    *worker.ContextIndexWorker
	MediaTools     *media.Tools
	Extractor      *extract.Extractor
	JobRunner      *jobs.Runner

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Document{},
		&model.WatchHistory{},
		&model.ChatHistory{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewOpenAICompatibleClient()
	embedder := &ai.RemoteEmbedder{
		Client: aiClient,
		Config: ai.EmbeddingConfig{
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Model:   cfg.Embedding.Model,
		},
	}
	transcriber := &ai.RemoteTranscriber{
		Client: aiClient,
		Config: ai.WhisperConfig{
			BaseURL:  cfg.Whisper.BaseURL,
			APIKey:   cfg.Whisper.APIKey,
			Model:    cfg.Whisper.Model,
			Language: cfg.Whisper.Language,
		},
	}

	contextStore := contextstore.NewMemoryStore()
	indexPublisher := rabbitmqClient.NewIndexPublisher(mqConn, cfg.RabbitMQ.ContextIndexQueue)
	indexWorker := worker.NewContextIndexWorker(mqConn, embedder, contextStore, cfg.RabbitMQ.ContextIndexQueue, log)
	if err := indexWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start context index worker failed: %w", err)
	}

	mediaTools := media.NewTools()
	if err := mediaTools.AssertReady(); err != nil {
		log.Warn("media tools unavailable, video probing degraded", "error", err)
	}

	jobRunner, err := jobs.NewRunner(
		jobs.NewMemoryStore(),
		transcriber,
		cfg.Jobs.PoolSize,
		filepath.Join(cfg.Uploads.Root, "transcribe"),
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("init transcription runner failed: %w", err)
	}

	return &App{
		Config:         cfg,
		Log:            log,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		Embedder:       embedder,
		Transcriber:    transcriber,
		Responder:      ai.NewTemplateResponder(),
		ContextStore:   contextStore,
		IndexPublisher: indexPublisher,
		IndexWorker:    indexWorker,
		MediaTools:     mediaTools,
		Extractor:      extract.New(log),
		JobRunner:      jobRunner,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.JobRunner != nil {
		a.JobRunner.Release()
	}
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}

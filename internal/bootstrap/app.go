package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"leadchat/internal/ai"
	"leadchat/internal/config"
	"leadchat/internal/model"
	mysqlClient "leadchat/internal/platform/mysql"
	rabbitmqClient "leadchat/internal/platform/rabbitmq"
	redisClient "leadchat/internal/platform/redis"
	"leadchat/internal/repository"
	"leadchat/internal/storage"
	"leadchat/internal/worker"
)

type App struct {
	Config       *config.Config
	Log          zerolog.Logger
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	AIClient     *ai.Client
	Store        *storage.LocalStore
	IntentWorker *worker.IntentWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("app", cfg.App.Name).
		Logger()

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Prospect{},
		&model.File{},
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

	aiClient := ai.NewClient(ai.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}, log)

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes, log)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewMessageRepository(mysqlDB)
	intentWorker := worker.NewIntentWorker(mqConn, messageRepo, aiClient, cfg.RabbitMQ.IntentQueue, log)
	if err := intentWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start intent worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		Log:          log,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		AIClient:     aiClient,
		Store:        store,
		IntentWorker: intentWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.IntentWorker != nil {
		a.IntentWorker.Close()
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
	return closeErr
}

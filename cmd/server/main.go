package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dealscope/internal/api"
	"dealscope/internal/auth"
	"dealscope/internal/config"
	"dealscope/internal/consolidator"
	"dealscope/internal/database/kafka"
	"dealscope/internal/database/minio"
	"dealscope/internal/database/mysql"
	"dealscope/internal/database/redis"
	"dealscope/internal/llm"
	"dealscope/internal/models"
	"dealscope/internal/pipeline"
	"dealscope/internal/prompts"
	"dealscope/internal/search"
	"dealscope/internal/secdata"
	"dealscope/internal/store"
	"dealscope/pkg/logger"
)

func main() {
	// .env is optional; real deployments configure through config.yaml and
	// the environment.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("server")

	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("database connection established")

	if err := db.AutoMigrate(
		&models.User{},
		&models.AnalysisSession{},
		&models.Upload{},
		&models.UploadFile{},
	); err != nil {
		appLogger.Fatal(err.Error())
	}

	objects, err := minio.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		appLogger.Fatal(err.Error())
	}

	cache, err := redis.GetClient(&cfg.Databases.Redis)
	if err != nil {
		appLogger.WithError(err).Warn("redis unavailable, response caching disabled")
		cache = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := mysql.HealthCheck(ctx); err != nil {
		appLogger.WithError(err).Warn("mysql health check failed")
	}
	cancel()

	library, err := prompts.Load(cfg.Prompts.Dir)
	if err != nil {
		appLogger.Fatal(err.Error())
	}

	dataStore := store.NewStore(db, objects, cfg.Databases.MinIO.Bucket)
	authService := auth.NewService(dataStore, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)
	llmClient := llm.NewClient(cfg.LLM)
	runner := pipeline.New(llmClient, library)
	cons := consolidator.New(llmClient, library)
	searchService := search.New(cfg.Search.IndexPath)
	defer searchService.Close()
	secdataClient := secdata.New(cfg.SECData, cache)

	audit := kafka.NewAuditPublisher(&cfg.Databases.Kafka)
	if audit != nil {
		defer audit.Close()
	}

	handler := api.NewHandler(
		authService, dataStore, runner, cons, llmClient,
		library, searchService, secdataClient, audit, cfg.LLM,
	)

	router := api.SetupRouter(handler, cfg)

	address := cfg.App.Address
	if address == "" {
		address = ":8080"
	}
	appLogger.Info("starting server on " + address)
	if err := router.Run(address); err != nil {
		appLogger.Fatal(err.Error())
	}
}

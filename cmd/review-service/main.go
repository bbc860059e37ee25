package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/admission-review/pkg/common/config"
	"github.com/synaptica-ai/admission-review/pkg/common/database"
	"github.com/synaptica-ai/admission-review/pkg/common/kafka"
	"github.com/synaptica-ai/admission-review/pkg/common/logger"
	"github.com/synaptica-ai/admission-review/pkg/common/middleware"
	"github.com/synaptica-ai/admission-review/pkg/dlp"
	"github.com/synaptica-ai/admission-review/pkg/guideline"
	"github.com/synaptica-ai/admission-review/pkg/observability/metrics"
	"github.com/synaptica-ai/admission-review/pkg/review"
	"github.com/synaptica-ai/admission-review/pkg/rewrite"
	"github.com/synaptica-ai/admission-review/pkg/rules"
)

func main() {
	logger.Init("review-service")
	cfg := config.Load()

	thresholds, err := rules.LoadThresholds(cfg.RulesConfigPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load rule thresholds")
	}
	engine := rules.NewEngine()

	if cfg.UnidocLicenseKey == "" {
		logger.Log.Warn("UNIDOC_LICENSE_API_KEY not set, guideline PDFs cannot be read and base thresholds will apply")
	}
	extractor, err := guideline.NewPDFExtractor(cfg.UnidocLicenseKey)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize PDF extractor")
	}

	var cache guideline.TextCache
	if cfg.GuidelineCacheEnabled {
		cache = guideline.NewRedisCache(database.GetRedis(cfg), cfg.GuidelineCacheTTL)
		defer database.CloseRedis()
	}

	var profiles guideline.ProfileStore
	if cfg.GuidelineProfilesEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
		}
		defer database.ClosePostgres()

		repo := guideline.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate guideline profiles")
		}
		profiles = repo
	}

	guidelines := guideline.NewService(extractor, cache, profiles, thresholds)

	rewriter := rewrite.NewLLMClient(rewrite.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModelName,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	if cfg.LLMAPIKey == "" {
		logger.Log.Warn("LLM_API_KEY not set, narratives will carry the rewriter error")
	}

	var redactor *dlp.Detector
	if cfg.RedactPHI {
		dlpRules, err := dlp.LoadRules(cfg.DLPRulesPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to load DLP rules")
		}
		redactor, err = dlp.NewDetector(dlpRules)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to compile DLP rules")
		}
	}

	var events *review.EventPublisher
	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaResultsTopic)
		events = review.NewEventPublisher(producer)
	}

	service := review.NewService(engine, guidelines, rewriter, redactor, events)

	consumeCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		consumer = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaNotesTopic, cfg.KafkaGroupID)
		go func() {
			logger.WithField("topic", cfg.KafkaNotesTopic).Info("Consuming clinical note events")
			if err := consumer.Consume(consumeCtx, service.HandleNoteEvent); err != nil {
				logger.Log.WithError(err).Error("Clinical note consumer stopped")
			}
		}()
	}

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	review.NewHTTPHandler(service, guidelines).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Review Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Review Service...")

	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close Kafka consumer")
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close Kafka producer")
		}
	}

	logger.Log.Info("Review Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

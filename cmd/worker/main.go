package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/thumbflow/internal/thumbnail"
	"github.com/your-org/thumbflow/pkg/config"
	"github.com/your-org/thumbflow/pkg/kafka"
	"github.com/your-org/thumbflow/pkg/logger"
	"github.com/your-org/thumbflow/pkg/storage/objectstore"
	"github.com/your-org/thumbflow/pkg/storage/recordstore"
	"github.com/your-org/thumbflow/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	store, err := objectstore.New(objectstore.Config{
		Provider:  cfg.Storage.Provider,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logr.Fatal("init object store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	records, err := recordstore.New(ctx, recordstore.Config{
		DSN:   cfg.Database.DSN,
		Table: cfg.Database.MetadataTable,
	})
	if err != nil {
		logr.Fatal("init record store", zap.Error(err))
	}
	defer records.Close()

	// Startup probe: a missing destination bucket is not fatal (the store may
	// come up later; events fail per-event until it does), but worth flagging.
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if ok, err := store.BucketExists(probeCtx, cfg.Storage.ThumbnailBucket); err != nil {
		logr.Warn("thumbnail bucket probe failed", zap.String("bucket", cfg.Storage.ThumbnailBucket), zap.Error(err))
	} else if !ok {
		logr.Warn("thumbnail bucket does not exist", zap.String("bucket", cfg.Storage.ThumbnailBucket))
	}
	cancel()

	// Left nil unless a completion topic is configured; a typed-nil producer
	// in the interface would defeat the service's disabled check.
	var publisher thumbnail.EventPublisher
	if cfg.Kafka.CompletionTopic != "" {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.CompletionTopic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		})
		defer producer.Close(context.Background()) //nolint:errcheck
		publisher = producer
	}

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.UploadsTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: cfg.Kafka.MinBytes,
		MaxBytes: cfg.Kafka.MaxBytes,
		MaxWait:  cfg.Kafka.MaxWait,
	})
	defer consumer.Close() //nolint:errcheck

	service := thumbnail.NewService(thumbnail.Params{
		Store:           store,
		Records:         records,
		Producer:        publisher,
		Logger:          logr,
		ThumbnailBucket: cfg.Storage.ThumbnailBucket,
		KeyPrefix:       cfg.Thumbnail.KeyPrefix,
		MaxWidth:        cfg.Thumbnail.MaxWidth,
		MaxHeight:       cfg.Thumbnail.MaxHeight,
		Quality:         cfg.Thumbnail.Quality,
	})

	admin := thumbnail.NewAdminHandler(store, records, cfg.Storage.ThumbnailBucket, logr)
	adminServer := &http.Server{
		Addr:         cfg.Admin.Addr,
		Handler:      admin.Router(),
		ReadTimeout:  cfg.Admin.ReadTimeout,
		WriteTimeout: cfg.Admin.WriteTimeout,
		IdleTimeout:  cfg.Admin.IdleTimeout,
	}

	go func() {
		logr.Info("admin server starting", zap.String("addr", cfg.Admin.Addr))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("admin server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logr.Error("admin server shutdown failed", zap.Error(err))
		}
	}()

	worker := thumbnail.NewWorker(consumer, service, logr)
	logr.Info("worker starting",
		zap.String("uploads_topic", cfg.Kafka.UploadsTopic),
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.String("thumbnail_bucket", cfg.Storage.ThumbnailBucket),
	)
	if err := worker.Run(ctx); err != nil {
		logr.Fatal("worker failed", zap.Error(err))
	}
	logr.Info("worker stopped")
}

func parseResourceAttributes(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	attrs := map[string]string{}
	pairs := strings.Split(raw, ",")
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return attrs
}

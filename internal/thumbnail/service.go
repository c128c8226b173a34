package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/thumbflow/pkg/storage/objectstore"
	"github.com/your-org/thumbflow/pkg/storage/recordstore"
)

const jpegContentType = "image/jpeg"

// EventPublisher is the slice of the Kafka producer the pipeline depends on.
// Satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error
}

// Service runs the thumbnail ingestion pipeline: per upload event it fetches
// the source object, produces a bounded JPEG thumbnail, writes it to the
// destination bucket, and upserts a metadata record keyed by the source key.
// Reprocessing the same event overwrites the same thumbnail and record, so
// redelivery by the broker is always safe.
type Service struct {
	store    objectstore.Client
	records  recordstore.Store
	producer EventPublisher
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time

	thumbnailBucket string
	keyPrefix       string
	maxWidth        int
	maxHeight       int
	quality         int
}

type Params struct {
	Store   objectstore.Client
	Records recordstore.Store
	// Producer is optional; completion events are disabled when nil.
	Producer EventPublisher
	Logger   *zap.Logger

	ThumbnailBucket string
	KeyPrefix       string
	MaxWidth        int
	MaxHeight       int
	Quality         int

	// Now overrides the wall clock, for tests.
	Now func() time.Time
}

// NewService constructs the pipeline Service.
func NewService(p Params) *Service {
	if p.KeyPrefix == "" {
		p.KeyPrefix = "thumbnails/"
	}
	if p.MaxWidth <= 0 {
		p.MaxWidth = 100
	}
	if p.MaxHeight <= 0 {
		p.MaxHeight = 100
	}
	if p.Quality <= 0 {
		p.Quality = 85
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		store:           p.Store,
		records:         p.Records,
		producer:        p.Producer,
		logger:          p.Logger,
		tracer:          otel.Tracer("thumbflow/pipeline"),
		now:             p.Now,
		thumbnailBucket: p.ThumbnailBucket,
		keyPrefix:       p.KeyPrefix,
		maxWidth:        p.MaxWidth,
		maxHeight:       p.MaxHeight,
		quality:         p.Quality,
	}
}

// Process runs the pipeline over one notification batch, sequentially. An
// individual event's failure never aborts the batch; every record gets an
// outcome in the returned BatchResult.
func (s *Service) Process(ctx context.Context, records []EventRecord) BatchResult {
	batchID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "thumbnail.process_batch", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.events", len(records)),
	))
	defer span.End()

	result := BatchResult{BatchID: batchID, Results: make([]EventResult, 0, len(records))}
	for _, rec := range records {
		result.Results = append(result.Results, s.processEvent(ctx, rec))
	}
	return result
}

func (s *Service) processEvent(ctx context.Context, rec EventRecord) EventResult {
	ctx, span := s.tracer.Start(ctx, "thumbnail.process_event")
	defer span.End()

	res := EventResult{Bucket: rec.S3.Bucket.Name, Key: rec.S3.Object.Key}

	if rec.S3.Bucket.Name == "" || rec.S3.Object.Key == "" {
		res.Status = StatusSkipped
		res.Kind = FailureMalformedEvent
		res.Err = errors.New("notification record missing bucket name or object key")
		return s.finish(span, res)
	}

	key, err := NormalizeKey(rec.S3.Object.Key)
	if err != nil {
		res.Status = StatusSkipped
		res.Kind = FailureMalformedEvent
		res.Err = err
		return s.finish(span, res)
	}
	res.Key = key
	span.SetAttributes(
		attribute.String("object.bucket", rec.S3.Bucket.Name),
		attribute.String("object.key", key),
	)

	obj, err := s.store.Get(ctx, rec.S3.Bucket.Name, key)
	if err != nil {
		res.Status = StatusFailed
		res.Kind = FailureSourceUnavailable
		res.Err = err
		return s.finish(span, res)
	}

	img, format, err := decodeImage(obj.Data)
	if err != nil {
		res.Status = StatusFailed
		res.Kind = FailureDecodeError
		res.Err = err
		return s.finish(span, res)
	}

	thumb := makeThumbnail(img, s.maxWidth, s.maxHeight)
	res.Width = thumb.Bounds().Dx()
	res.Height = thumb.Bounds().Dy()

	data, err := encodeJPEG(thumb, s.quality)
	if err != nil {
		// An encode failure after a clean decode is treated the same way as
		// a decode failure.
		res.Status = StatusFailed
		res.Kind = FailureDecodeError
		res.Err = err
		return s.finish(span, res)
	}

	thumbKey := DeriveThumbnailKey(s.keyPrefix, key)
	res.ThumbnailKey = thumbKey

	if err := s.store.Put(ctx, s.thumbnailBucket, thumbKey, bytes.NewReader(data), int64(len(data)), jpegContentType); err != nil {
		res.Status = StatusFailed
		res.Kind = FailureDestinationUnavailable
		res.Err = err
		return s.finish(span, res)
	}

	// The record is written only after the thumbnail upload is confirmed,
	// so a record never references a thumbnail that does not exist.
	record := recordstore.ImageRecord{
		ImageName:    key,
		SizeBytes:    obj.Size,
		CreatedAt:    obj.LastModified,
		ProcessedAt:  s.now().UTC(),
		ThumbnailKey: thumbKey,
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		res.Status = StatusPartial
		res.Kind = FailureMetadataError
		res.Err = err
		return s.finish(span, res)
	}

	res.Status = StatusSuccess
	s.publishCompletion(ctx, rec.S3.Bucket.Name, record, res)

	s.logger.Info("thumbnail created",
		zap.String("bucket", rec.S3.Bucket.Name),
		zap.String("key", key),
		zap.String("thumbnail_key", thumbKey),
		zap.String("source_format", format),
		zap.Int64("source_bytes", obj.Size),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
	)
	return s.finish(span, res)
}

// finish records the outcome on the span and logs non-success outcomes.
func (s *Service) finish(span trace.Span, res EventResult) EventResult {
	span.SetAttributes(
		attribute.String("event.status", string(res.Status)),
		attribute.String("event.failure_kind", string(res.Kind)),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
	}

	switch res.Status {
	case StatusSuccess:
		span.SetStatus(codes.Ok, "")
	case StatusSkipped:
		s.logger.Warn("upload event skipped",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
			zap.String("reason", string(res.Kind)),
			zap.Error(res.Err),
		)
	case StatusPartial:
		span.SetStatus(codes.Error, string(res.Kind))
		s.logger.Error("metadata upsert failed after thumbnail write",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
			zap.String("thumbnail_key", res.ThumbnailKey),
			zap.Error(res.Err),
		)
	default:
		span.SetStatus(codes.Error, string(res.Kind))
		s.logger.Error("upload event failed",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
			zap.String("reason", string(res.Kind)),
			zap.Error(res.Err),
		)
	}
	return res
}

// publishCompletion emits a thumbnail.created event keyed by image name.
// Publish failures are logged and do not change the event outcome: the
// thumbnail and its record are already committed.
func (s *Service) publishCompletion(ctx context.Context, sourceBucket string, rec recordstore.ImageRecord, res EventResult) {
	if s.producer == nil {
		return
	}

	event := CreatedEvent{
		ID:              uuid.NewString(),
		SourceBucket:    sourceBucket,
		SourceKey:       rec.ImageName,
		ThumbnailBucket: s.thumbnailBucket,
		ThumbnailKey:    rec.ThumbnailKey,
		SizeBytes:       rec.SizeBytes,
		Width:           res.Width,
		Height:          res.Height,
		ProcessedAt:     rec.ProcessedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshal completion event", zap.Error(err))
		return
	}

	headers := map[string]string{
		"event_type": "thumbnail.created",
		"image_name": rec.ImageName,
	}
	if err := s.producer.Publish(ctx, []byte(rec.ImageName), payload, headers); err != nil {
		s.logger.Warn("publish completion event",
			zap.String("key", rec.ImageName),
			zap.Error(err),
		)
	}
}

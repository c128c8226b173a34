package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound reports that no record exists for the requested image name.
var ErrNotFound = errors.New("record not found")

// Config contains the information required to open the record store.
type Config struct {
	DSN   string
	Table string
}

// ImageRecord is the descriptive metadata kept per processed source image,
// keyed by the normalized source object key.
type ImageRecord struct {
	ImageName    string
	SizeBytes    int64
	CreatedAt    time.Time // source object's last-modified time
	ProcessedAt  time.Time
	ThumbnailKey string
}

// Store persists ImageRecords with upsert semantics.
type Store interface {
	Upsert(ctx context.Context, rec ImageRecord) error
	Get(ctx context.Context, imageName string) (*ImageRecord, error)
	Ping(ctx context.Context) error
	Close()
}

type pgStore struct {
	pool  *pgxpool.Pool
	table string
}

// New opens a pgx pool against the configured DSN, applies the embedded
// migrations, and returns a Store writing to the configured table.
func New(ctx context.Context, cfg Config) (Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := runMigrations(db); err != nil {
		db.Close()
		pool.Close()
		return nil, fmt.Errorf("migrate record store: %w", err)
	}
	if err := db.Close(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("close migration handle: %w", err)
	}

	return &pgStore{
		pool:  pool,
		table: pgx.Identifier{cfg.Table}.Sanitize(),
	}, nil
}

// Upsert inserts the record or overwrites the existing record sharing the
// same image name. Reprocessing a source key therefore never appends.
func (s *pgStore) Upsert(ctx context.Context, rec ImageRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (image_name, size_bytes, created_at, processed_at, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (image_name) DO UPDATE SET
			size_bytes = EXCLUDED.size_bytes,
			created_at = EXCLUDED.created_at,
			processed_at = EXCLUDED.processed_at,
			thumbnail_key = EXCLUDED.thumbnail_key`, s.table)

	if _, err := s.pool.Exec(ctx, query,
		rec.ImageName, rec.SizeBytes, rec.CreatedAt, rec.ProcessedAt, rec.ThumbnailKey); err != nil {
		return fmt.Errorf("upsert image record %q: %w", rec.ImageName, err)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, imageName string) (*ImageRecord, error) {
	query := fmt.Sprintf(`
		SELECT image_name, size_bytes, created_at, processed_at, thumbnail_key
		FROM %s WHERE image_name = $1`, s.table)

	var rec ImageRecord
	err := s.pool.QueryRow(ctx, query, imageName).Scan(
		&rec.ImageName, &rec.SizeBytes, &rec.CreatedAt, &rec.ProcessedAt, &rec.ThumbnailKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image record %q: %w", imageName, err)
	}
	return &rec, nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *pgStore) Close() {
	s.pool.Close()
}

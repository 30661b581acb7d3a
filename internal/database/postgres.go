package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/models"
)

const createConversionsTableSQL = `
		CREATE TABLE IF NOT EXISTS conversions (
			id UUID PRIMARY KEY,
			video_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			author VARCHAR(255) NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			source_url TEXT NOT NULL,
			status conversion_status NOT NULL,
			error_code VARCHAR(64) NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			bitrate INTEGER NOT NULL DEFAULT 0,
			archive_key VARCHAR(700) NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_conversions_video_id ON conversions(video_id);
		CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
	`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg *config.PostgresConfig) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Build connection string
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgdb := &PostgresDB{
		pool: pool,
	}

	if err := pgdb.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pgdb, nil
}

func (p *PostgresDB) Name() string {
	return config.HistoryBackendPostgres
}

func (p *PostgresDB) createTables(ctx context.Context) error {
	createTypeQuery := `
		DO $$ BEGIN
			CREATE TYPE conversion_status AS ENUM ('completed', 'failed');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`

	if _, err := p.pool.Exec(ctx, createTypeQuery); err != nil {
		return fmt.Errorf("failed to create conversion_status type: %w", err)
	}

	if _, err := p.pool.Exec(ctx, createConversionsTableSQL); err != nil {
		return fmt.Errorf("failed to create conversions table: %w", err)
	}

	return nil
}

func (p *PostgresDB) RecordConversion(ctx context.Context, record *models.ConversionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO conversions (id, video_id, title, author, duration_seconds, source_url,
			status, error_code, file_size, bitrate, archive_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := p.pool.Exec(ctx, query,
		record.ID, record.VideoID, record.Title, record.Author, record.DurationSeconds, record.SourceURL,
		string(record.Status), record.ErrorCode, record.FileSize, record.Bitrate, record.ArchiveKey, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

func (p *PostgresDB) ListConversions(ctx context.Context, opts models.PaginationOptions) ([]models.ConversionRecord, int, error) {
	opts = normalizePagination(opts)
	offset := (opts.Page - 1) * opts.Limit

	var total int
	countQuery := `SELECT COUNT(*) FROM conversions`
	if err := p.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if opts.Sort == SortCreatedAtAsc {
		order = "ASC"
	}

	query := `
		SELECT id, video_id, title, author, duration_seconds, source_url,
			status::text, error_code, file_size, bitrate, archive_key, created_at
		FROM conversions
		ORDER BY created_at ` + order + `
		LIMIT $1 OFFSET $2`

	rows, err := p.pool.Query(ctx, query, opts.Limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	conversions := []models.ConversionRecord{}
	for rows.Next() {
		var record models.ConversionRecord
		var status string
		err := rows.Scan(
			&record.ID, &record.VideoID, &record.Title, &record.Author, &record.DurationSeconds, &record.SourceURL,
			&status, &record.ErrorCode, &record.FileSize, &record.Bitrate, &record.ArchiveKey, &record.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		record.Status = models.ConversionStatus(status)
		conversions = append(conversions, record)
	}

	return conversions, total, rows.Err()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *PostgresDB) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}

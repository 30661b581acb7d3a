package database

import (
	"context"
	"math"

	"github.com/denisAlshanov/ytmp3/internal/models"
)

const (
	SortCreatedAtDesc = "created_at_desc"
	SortCreatedAtAsc  = "created_at_asc"

	defaultPageLimit = 20
	maxPageLimit     = 100

	// MaxPage keeps (page-1)*limit inside an int32 OFFSET/skip.
	MaxPage = math.MaxInt32 / maxPageLimit
)

// HistoryStore persists one record per download attempt. Records are never
// read back by the conversion path.
type HistoryStore interface {
	Name() string
	RecordConversion(ctx context.Context, record *models.ConversionRecord) error
	ListConversions(ctx context.Context, opts models.PaginationOptions) ([]models.ConversionRecord, int, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// normalizePagination clamps page/limit and falls back to newest-first ordering
func normalizePagination(opts models.PaginationOptions) models.PaginationOptions {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Page > MaxPage {
		opts.Page = MaxPage
	}
	if opts.Limit < 1 || opts.Limit > maxPageLimit {
		opts.Limit = defaultPageLimit
	}
	if opts.Sort != SortCreatedAtAsc {
		opts.Sort = SortCreatedAtDesc
	}
	return opts
}

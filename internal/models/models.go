package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoMetadata is the preview returned for a video. Field names match the
// JSON contract consumed by the web UI.
type VideoMetadata struct {
	Title     string `json:"title"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Author    string `json:"author"`
	VideoID   string `json:"videoId"`
}

type VideoInfoResponse struct {
	VideoMetadata
	DurationText string `json:"durationText"`
}

type DownloadRequest struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type ConversionStatus string

const (
	ConversionStatusCompleted ConversionStatus = "completed"
	ConversionStatusFailed    ConversionStatus = "failed"
)

// ConversionRecord is one download attempt as kept in the history store.
type ConversionRecord struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	VideoID         string           `json:"video_id" db:"video_id"`
	Title           string           `json:"title" db:"title"`
	Author          string           `json:"author" db:"author"`
	DurationSeconds int              `json:"duration_seconds" db:"duration_seconds"`
	SourceURL       string           `json:"source_url" db:"source_url"`
	Status          ConversionStatus `json:"status" db:"status"`
	ErrorCode       string           `json:"error_code,omitempty" db:"error_code"`
	FileSize        int64            `json:"file_size" db:"file_size"`
	Bitrate         int              `json:"bitrate" db:"bitrate"`
	ArchiveKey      string           `json:"archive_key,omitempty" db:"archive_key"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

type PaginationOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
}

type HistoryListResponse struct {
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
	Conversions []ConversionRecord `json:"conversions"`
}

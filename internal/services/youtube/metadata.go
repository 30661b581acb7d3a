package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/denisAlshanov/ytmp3/internal/models"
)

var (
	ErrInvalidURL       = errors.New("invalid YouTube URL")
	ErrVideoUnavailable = errors.New("video is private or unavailable")
	ErrBotDetected      = errors.New("request blocked by YouTube bot detection")
	ErrFetchFailed      = errors.New("failed to fetch video information")
	ErrInvalidDuration  = errors.New("invalid video duration")
	ErrUpstreamTimeout  = errors.New("video source did not respond in time")
	ErrNoAudioAvailable = errors.New("no audio format available")
)

// Fetcher resolves validated URLs into metadata through a VideoSource.
type Fetcher struct {
	source  VideoSource
	timeout time.Duration
}

func NewFetcher(source VideoSource, timeout time.Duration) *Fetcher {
	return &Fetcher{
		source:  source,
		timeout: timeout,
	}
}

// Fetch returns the preview metadata and the extractor details (including
// the audio format list) for url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.VideoMetadata, *VideoDetails, error) {
	if !IsValidURL(url) {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	details, err := f.source.GetVideo(fetchCtx, url)
	if err != nil {
		return nil, nil, classifyError(fetchCtx, err)
	}

	metadata, err := toMetadata(details)
	if err != nil {
		return nil, nil, err
	}

	return metadata, details, nil
}

// OpenAudioStream opens the selected format. The stream lives as long as ctx,
// so no fetch timeout is applied here.
func (f *Fetcher) OpenAudioStream(ctx context.Context, details *VideoDetails, format AudioFormat) (io.ReadCloser, error) {
	stream, err := f.source.OpenAudioStream(ctx, details, format)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	return stream, nil
}

func toMetadata(details *VideoDetails) (*models.VideoMetadata, error) {
	duration, err := strconv.Atoi(strings.TrimSpace(details.LengthSeconds))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, details.LengthSeconds)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}

	var thumbnail string
	if n := len(details.Thumbnails); n > 0 {
		thumbnail = details.Thumbnails[n-1].URL
	}

	return &models.VideoMetadata{
		Title:     details.Title,
		Duration:  duration,
		Thumbnail: thumbnail,
		Author:    details.Author,
		VideoID:   details.ID,
	}, nil
}

// classifyError maps extractor failures onto the fetcher's error kinds.
// Bot detection is checked first because YouTube reports it as a
// playability status as well.
func classifyError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidURL),
		errors.Is(err, ErrVideoUnavailable),
		errors.Is(err, ErrBotDetected),
		errors.Is(err, ErrUpstreamTimeout),
		errors.Is(err, ErrFetchFailed):
		return err
	case isBotDetection(err):
		return fmt.Errorf("%w: %w", ErrBotDetected, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", ErrVideoUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
}

func isBotDetection(err error) bool {
	var statusErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) && int(statusErr) == http.StatusTooManyRequests {
		return true
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "sign in to confirm") || strings.Contains(message, "bot")
}

func isUnavailable(err error) bool {
	if errors.Is(err, youtube.ErrVideoPrivate) ||
		errors.Is(err, youtube.ErrLoginRequired) ||
		errors.Is(err, youtube.ErrNotPlayableInEmbed) {
		return true
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	var statusVal youtube.ErrPlayabiltyStatus
	return errors.As(err, &statusErr) || errors.As(err, &statusVal)
}

package youtube

import (
	"context"
	"io"

	"github.com/kkdai/youtube/v2"
)

// VideoSource is the extractor the fetcher and converter talk to.
type VideoSource interface {
	// GetVideo resolves a video URL into its details and audio-only formats
	GetVideo(ctx context.Context, url string) (*VideoDetails, error)

	// OpenAudioStream opens the byte stream of one audio format
	OpenAudioStream(ctx context.Context, video *VideoDetails, format AudioFormat) (io.ReadCloser, error)
}

// VideoDetails is the raw extractor view of a video. LengthSeconds is kept
// textual; the fetcher owns parsing it.
type VideoDetails struct {
	ID            string
	Title         string
	Author        string
	LengthSeconds string
	// Thumbnails are ordered ascending by size
	Thumbnails []Thumbnail
	// AudioFormats lists audio-only formats in preference order of the configured quality
	AudioFormats []AudioFormat

	video *youtube.Video
}

type Thumbnail struct {
	URL    string
	Width  uint
	Height uint
}

// AudioFormat describes one audio-only stream. Itag is the handle used to open it.
type AudioFormat struct {
	Itag          int
	Codec         string
	MimeType      string
	Bitrate       int
	AudioQuality  string
	ContentLength int64
}

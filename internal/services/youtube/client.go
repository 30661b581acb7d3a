package youtube

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const (
	QualityHighestAudio = "highestaudio"
	QualityLowestAudio  = "lowestaudio"
)

type Client struct {
	client       *youtube.Client
	httpClient   *http.Client
	audioQuality string
}

// NewClient creates a new YouTube client. Request lifetimes are bounded by
// the caller's context; the transport only caps the wait for response headers
// so long audio streams are not cut off.
func NewClient(audioQuality string) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
	}

	ytClient := &youtube.Client{
		HTTPClient: httpClient,
	}

	return &Client{
		client:       ytClient,
		httpClient:   httpClient,
		audioQuality: audioQuality,
	}
}

// GetVideo retrieves video metadata and its audio-only formats in one call
func (c *Client) GetVideo(ctx context.Context, url string) (*VideoDetails, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	details := &VideoDetails{
		ID:            video.ID,
		Title:         video.Title,
		Author:        video.Author,
		LengthSeconds: strconv.FormatInt(int64(video.Duration/time.Second), 10),
		AudioFormats:  toAudioFormats(video.Formats, c.audioQuality),
		video:         video,
	}

	for _, thumb := range video.Thumbnails {
		details.Thumbnails = append(details.Thumbnails, Thumbnail{
			URL:    thumb.URL,
			Width:  thumb.Width,
			Height: thumb.Height,
		})
	}

	return details, nil
}

// OpenAudioStream opens the stream for format on a video returned by GetVideo
func (c *Client) OpenAudioStream(ctx context.Context, details *VideoDetails, format AudioFormat) (io.ReadCloser, error) {
	if details == nil || details.video == nil {
		return nil, fmt.Errorf("video details were not resolved by this client")
	}

	matches := details.video.Formats.Itag(format.Itag)
	if len(matches) == 0 {
		return nil, fmt.Errorf("format itag %d not found for video %s", format.Itag, details.ID)
	}

	stream, _, err := c.client.GetStreamContext(ctx, details.video, &matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	return stream, nil
}

// toAudioFormats keeps audio-only formats, ordered by bitrate according to quality
func toAudioFormats(formats youtube.FormatList, quality string) []AudioFormat {
	var audio []AudioFormat

	for _, format := range formats {
		if !strings.HasPrefix(format.MimeType, "audio/") {
			continue
		}

		audio = append(audio, AudioFormat{
			Itag:          format.ItagNo,
			Codec:         codecFromMimeType(format.MimeType),
			MimeType:      format.MimeType,
			Bitrate:       format.Bitrate,
			AudioQuality:  format.AudioQuality,
			ContentLength: format.ContentLength,
		})
	}

	sort.SliceStable(audio, func(i, j int) bool {
		if quality == QualityLowestAudio {
			return audio[i].Bitrate < audio[j].Bitrate
		}
		return audio[i].Bitrate > audio[j].Bitrate
	})

	return audio
}

// codecFromMimeType extracts the codecs parameter, e.g. `audio/mp4; codecs="mp4a.40.2"` -> mp4a.40.2
func codecFromMimeType(mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	codec := params["codecs"]
	if i := strings.Index(codec, ","); i >= 0 {
		codec = codec[:i]
	}
	return strings.TrimSpace(codec)
}

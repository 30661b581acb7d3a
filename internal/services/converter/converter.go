package converter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/services/storage"
	"github.com/denisAlshanov/ytmp3/internal/services/transcoder"
	"github.com/denisAlshanov/ytmp3/internal/services/youtube"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

type Stage string

const (
	StageValidating       Stage = "validating"
	StageFetchingMetadata Stage = "fetching_metadata"
	StageCheckingDuration Stage = "checking_duration"
	StageSelectingFormat  Stage = "selecting_format"
	StageTranscoding      Stage = "transcoding"
	StageResponding       Stage = "responding"
)

const (
	ContentTypeMP3   = "audio/mpeg"
	historyTimeout   = 5 * time.Second
	defaultArchiveTO = 30 * time.Second
)

type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (*models.VideoMetadata, *youtube.VideoDetails, error)
	OpenAudioStream(ctx context.Context, details *youtube.VideoDetails, format youtube.AudioFormat) (io.ReadCloser, error)
}

type AudioTranscoder interface {
	Transcode(ctx context.Context, src io.Reader) ([]byte, error)
	Bitrate() int
}

type HistoryRecorder interface {
	RecordConversion(ctx context.Context, record *models.ConversionRecord) error
}

// Conversion is a finished download: the encoded audio plus what is needed
// to describe it to the client.
type Conversion struct {
	Metadata *models.VideoMetadata
	Format   youtube.AudioFormat
	Filename string
	Audio    []byte
}

type Options struct {
	MaxVideoDuration int // seconds
	ArchivePrefix    string
	ArchiveTimeout   time.Duration
}

type Service struct {
	fetcher    MetadataFetcher
	transcoder AudioTranscoder
	history    HistoryRecorder
	archive    storage.StorageInterface
	opts       Options
}

// NewService wires the conversion pipeline. history and archive may be nil.
func NewService(fetcher MetadataFetcher, tr AudioTranscoder, history HistoryRecorder, archive storage.StorageInterface, opts Options) *Service {
	if opts.ArchiveTimeout <= 0 {
		opts.ArchiveTimeout = defaultArchiveTO
	}
	return &Service{
		fetcher:    fetcher,
		transcoder: tr,
		history:    history,
		archive:    archive,
		opts:       opts,
	}
}

// Preview validates url and returns its metadata without touching the audio.
func (s *Service) Preview(ctx context.Context, url string) (*models.VideoMetadata, error) {
	if err := s.validate(ctx, url); err != nil {
		return nil, err
	}

	videoID, _ := youtube.ExtractVideoID(url)
	ctx = utils.WithVideoID(ctx, videoID)

	s.enter(ctx, StageFetchingMetadata, nil)
	metadata, _, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, s.fail(ctx, StageFetchingMetadata, err)
	}

	utils.LogInfo(ctx, "Video metadata resolved", utils.Fields{
		"video_id": metadata.VideoID,
		"duration": utils.FormatDuration(metadata.Duration),
	})
	return metadata, nil
}

// Convert runs the full download: metadata, duration check, format
// selection and transcoding. The audio stream is opened only once the video
// passed the duration check.
func (s *Service) Convert(ctx context.Context, url string) (*Conversion, error) {
	if err := s.validate(ctx, url); err != nil {
		return nil, err
	}

	record := &models.ConversionRecord{
		SourceURL: url,
		Bitrate:   s.transcoder.Bitrate(),
	}
	record.VideoID, _ = youtube.ExtractVideoID(url)
	ctx = utils.WithVideoID(ctx, record.VideoID)

	conversion, err := s.convert(ctx, url, record)
	if err != nil {
		record.Status = models.ConversionStatusFailed
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			record.ErrorCode = string(appErr.Code)
		}
		s.recordHistory(ctx, record)
		return nil, err
	}

	record.Status = models.ConversionStatusCompleted
	record.FileSize = int64(len(conversion.Audio))
	record.ArchiveKey = s.archiveAudio(ctx, conversion)
	s.recordHistory(ctx, record)

	s.enter(ctx, StageResponding, utils.Fields{
		"filename": conversion.Filename,
		"size":     len(conversion.Audio),
	})
	return conversion, nil
}

func (s *Service) convert(ctx context.Context, url string, record *models.ConversionRecord) (*Conversion, error) {
	s.enter(ctx, StageFetchingMetadata, nil)
	metadata, details, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, s.fail(ctx, StageFetchingMetadata, err)
	}
	record.VideoID = metadata.VideoID
	record.Title = metadata.Title
	record.Author = metadata.Author
	record.DurationSeconds = metadata.Duration

	s.enter(ctx, StageCheckingDuration, utils.Fields{
		"duration":     metadata.Duration,
		"max_duration": s.opts.MaxVideoDuration,
	})
	if metadata.Duration > s.opts.MaxVideoDuration {
		appErr := utils.NewVideoTooLongError(metadata.Duration, s.opts.MaxVideoDuration)
		utils.LogWarn(ctx, "Video exceeds maximum duration", utils.Fields{
			"video_id": metadata.VideoID,
			"duration": utils.FormatDuration(metadata.Duration),
		})
		return nil, appErr
	}

	s.enter(ctx, StageSelectingFormat, utils.Fields{"formats": len(details.AudioFormats)})
	format, err := youtube.SelectAudioFormat(details.AudioFormats)
	if err != nil {
		return nil, s.fail(ctx, StageSelectingFormat, err)
	}

	s.enter(ctx, StageTranscoding, utils.Fields{
		"itag":    format.Itag,
		"codec":   format.Codec,
		"bitrate": format.Bitrate,
	})
	audio, err := s.transcode(ctx, details, format)
	if err != nil {
		return nil, s.fail(ctx, StageTranscoding, err)
	}

	return &Conversion{
		Metadata: metadata,
		Format:   format,
		Filename: utils.AttachmentFilename(metadata.Title, transcoder.OutputFormat),
		Audio:    audio,
	}, nil
}

func (s *Service) transcode(ctx context.Context, details *youtube.VideoDetails, format youtube.AudioFormat) ([]byte, error) {
	stream, err := s.fetcher.OpenAudioStream(ctx, details, format)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return s.transcoder.Transcode(ctx, stream)
}

func (s *Service) validate(ctx context.Context, url string) error {
	s.enter(ctx, StageValidating, utils.Fields{"url": url})
	if !youtube.IsValidURL(url) {
		utils.LogWarn(ctx, "Rejected invalid YouTube URL", utils.Fields{"url": url})
		return utils.NewInvalidURLError(url)
	}
	return nil
}

func (s *Service) enter(ctx context.Context, stage Stage, fields utils.Fields) {
	entry := utils.Fields{"stage": string(stage)}
	for k, v := range fields {
		entry[k] = v
	}
	utils.LogInfo(ctx, "Conversion stage", entry)
}

func (s *Service) fail(ctx context.Context, stage Stage, err error) *utils.AppError {
	appErr := toAppError(stage, err)
	utils.LogError(ctx, "Conversion failed", err, utils.Fields{
		"stage": string(stage),
		"code":  string(appErr.Code),
	})
	return appErr
}

func toAppError(stage Stage, err error) *utils.AppError {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, youtube.ErrInvalidURL):
		return utils.NewInvalidURLError("")
	case errors.Is(err, youtube.ErrBotDetected):
		return utils.NewBotDetectedError(err)
	case errors.Is(err, youtube.ErrVideoUnavailable):
		return utils.NewVideoUnavailableError(err)
	case errors.Is(err, youtube.ErrNoAudioAvailable):
		return utils.NewNoAudioError()
	case errors.Is(err, youtube.ErrUpstreamTimeout),
		errors.Is(err, transcoder.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return utils.NewUpstreamTimeoutError(string(stage), err)
	case errors.Is(err, transcoder.ErrConversionFailed):
		return utils.NewConversionError(err)
	case errors.Is(err, youtube.ErrFetchFailed), errors.Is(err, youtube.ErrInvalidDuration):
		return utils.NewDownloadError(err)
	}

	if stage == StageTranscoding {
		return utils.NewConversionError(err)
	}
	appErr = utils.NewInternalError()
	appErr.Err = err
	return appErr
}

func (s *Service) recordHistory(ctx context.Context, record *models.ConversionRecord) {
	if s.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	if err := s.history.RecordConversion(ctx, record); err != nil {
		utils.LogError(ctx, "Failed to record conversion history", err, utils.Fields{
			"video_id": record.VideoID,
			"status":   string(record.Status),
		})
	}
}

// archiveAudio uploads the finished MP3 and returns its key, or "" when
// archiving is off or failed.
func (s *Service) archiveAudio(ctx context.Context, conversion *Conversion) string {
	if s.archive == nil {
		return ""
	}

	key := storage.ArchiveKey(s.opts.ArchivePrefix, conversion.Metadata.VideoID, conversion.Filename)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ArchiveTimeout)
	defer cancel()

	metadata := map[string]string{
		"video-id": conversion.Metadata.VideoID,
		"duration": strconv.Itoa(conversion.Metadata.Duration),
		"codec":    conversion.Format.Codec,
	}
	if err := s.archive.UploadWithMetadata(ctx, key, bytes.NewReader(conversion.Audio), ContentTypeMP3, metadata); err != nil {
		utils.LogError(ctx, "Failed to archive MP3", err, utils.Fields{
			"bucket": s.archive.BucketName(),
			"key":    key,
		})
		return ""
	}

	utils.LogInfo(ctx, "MP3 archived", utils.Fields{
		"bucket": s.archive.BucketName(),
		"key":    key,
	})
	return key
}

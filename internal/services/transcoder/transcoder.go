package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

const (
	OutputFormat = "mp3"
	AudioCodec   = "libmp3lame"

	// stderr beyond this is dropped; ffmpeg prints the cause last
	maxStderrBytes = 4096
	waitDelay      = 5 * time.Second
)

var (
	ErrConversionFailed = errors.New("audio conversion failed")
	ErrTimeout          = errors.New("encoder did not finish in time")
)

// Transcoder runs one ffmpeg process per conversion, reading the source on
// stdin and collecting MP3 frames from stdout.
type Transcoder struct {
	ffmpegPath string
	bitrate    int
	timeout    time.Duration
	semaphore  chan struct{}

	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewTranscoder(cfg *config.TranscodeConfig) *Transcoder {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Transcoder{
		ffmpegPath:     cfg.FFmpegPath,
		bitrate:        cfg.AudioBitrate,
		timeout:        cfg.Timeout,
		semaphore:      make(chan struct{}, maxConcurrent),
		commandContext: exec.CommandContext,
	}
}

// Available checks if the encoder binary can be resolved
func (t *Transcoder) Available() bool {
	_, err := exec.LookPath(t.ffmpegPath)
	return err == nil
}

func (t *Transcoder) Bitrate() int {
	return t.bitrate
}

func (t *Transcoder) args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-acodec", AudioCodec,
		"-b:a", strconv.Itoa(t.bitrate) + "k",
		"-f", OutputFormat,
		"pipe:1",
	}
}

// Transcode encodes src to MP3 and returns the complete output. Either the
// whole buffer is returned or an error; partial output is never handed back.
func (t *Transcoder) Transcode(ctx context.Context, src io.Reader) ([]byte, error) {
	select {
	case t.semaphore <- struct{}{}:
		defer func() { <-t.semaphore }()
	case <-ctx.Done():
		return nil, t.contextError(ctx, ctx.Err())
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: maxStderrBytes}

	cmd := t.commandContext(runCtx, t.ffmpegPath, t.args()...)
	cmd.Stdin = src
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	utils.LogDebug(ctx, "Starting encoder", utils.Fields{
		"path":    t.ffmpegPath,
		"bitrate": t.bitrate,
	})

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return nil, t.contextError(runCtx, err)
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrConversionFailed, err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: encoder produced no output: %s", ErrConversionFailed, stderr.String())
	}

	utils.LogDebug(ctx, "Encoder finished", utils.Fields{
		"bytes":    stdout.Len(),
		"duration": time.Since(start).String(),
	})
	return stdout.Bytes(), nil
}

func (t *Transcoder) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrConversionFailed, err)
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return strings.TrimSpace(string(b.buf))
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/services/converter"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

type Converter interface {
	Convert(ctx context.Context, url string) (*converter.Conversion, error)
	Preview(ctx context.Context, url string) (*models.VideoMetadata, error)
}

type DownloadHandler struct {
	converter Converter
}

func NewDownloadHandler(converter Converter) *DownloadHandler {
	return &DownloadHandler{
		converter: converter,
	}
}

// Download godoc
// @Summary Convert a YouTube video to MP3
// @Description Fetches the audio track of a YouTube video, encodes it to MP3 and returns the file as an attachment.
// @Tags download
// @Accept json
// @Produce audio/mpeg
// @Produce json
// @Param request body models.DownloadRequest true "YouTube URL"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /api/download [post]
func (h *DownloadHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	conversion, err := h.converter.Convert(ctx, req.URL)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", conversion.Filename))
	c.Header("Content-Length", strconv.Itoa(len(conversion.Audio)))
	c.Data(http.StatusOK, converter.ContentTypeMP3, conversion.Audio)
}

// Info godoc
// @Summary Preview a YouTube video
// @Description Returns title, duration, thumbnail and author of a YouTube video without downloading it.
// @Tags download
// @Produce json
// @Param url query string true "YouTube URL"
// @Success 200 {object} models.VideoInfoResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /api/download [get]
func (h *DownloadHandler) Info(c *gin.Context) {
	ctx := c.Request.Context()

	url := c.Query("url")
	if url == "" {
		errorResponse(c, utils.NewInvalidURLError(url))
		return
	}

	metadata, err := h.converter.Preview(ctx, url)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VideoInfoResponse{
		VideoMetadata: *metadata,
		DurationText:  utils.FormatDuration(metadata.Duration),
	})
}

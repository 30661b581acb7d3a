package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInvalidURL        ErrorCode = "INVALID_URL"
	ErrorCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrorCodeVideoTooLong      ErrorCode = "VIDEO_TOO_LONG"
	ErrorCodeVideoNotAvailable ErrorCode = "VIDEO_NOT_AVAILABLE"
	ErrorCodeBotDetected       ErrorCode = "BOT_DETECTED"
	ErrorCodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeNoAudioAvailable  ErrorCode = "NO_AUDIO_AVAILABLE"
	ErrorCodeConversionFailed  ErrorCode = "CONVERSION_FAILED"
	ErrorCodeUpstreamTimeout   ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeHistoryDisabled   ErrorCode = "HISTORY_DISABLED"
	ErrorCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// BotDetectedMessage is shown when YouTube blocks the extractor. The condition
// comes from the hosting network, so the user gets a workaround instead of a retry hint.
const BotDetectedMessage = "YouTube has detected this as an automated request. This typically happens on cloud hosting platforms. Please try running this application locally or use a VPN."

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeInvalidRequest, message, http.StatusBadRequest, details)
}

func NewInvalidURLError(url string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidURL,
		"Please enter a valid YouTube URL",
		http.StatusBadRequest,
		map[string]interface{}{
			"expected_format": "https://www.youtube.com/watch?v=VIDEO_ID",
			"provided":        url,
		},
	)
}

func NewVideoTooLongError(durationSeconds, maxSeconds int) *AppError {
	return NewErrorWithDetails(
		ErrorCodeVideoTooLong,
		fmt.Sprintf("Video duration exceeds maximum allowed (%d minutes)", maxSeconds/60),
		http.StatusBadRequest,
		map[string]interface{}{
			"duration":     durationSeconds,
			"max_duration": maxSeconds,
		},
	)
}

func NewVideoUnavailableError(err error) *AppError {
	appErr := NewError(
		ErrorCodeVideoNotAvailable,
		"This video is not available or is private",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewBotDetectedError(err error) *AppError {
	appErr := NewError(ErrorCodeBotDetected, BotDetectedMessage, http.StatusInternalServerError)
	appErr.Err = err
	return appErr
}

func NewDownloadError(err error) *AppError {
	appErr := NewError(
		ErrorCodeDownloadFailed,
		"Failed to fetch video information. Please check the URL and try again.",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewNoAudioError() *AppError {
	return NewError(
		ErrorCodeNoAudioAvailable,
		"No audio format available",
		http.StatusInternalServerError,
	)
}

func NewConversionError(err error) *AppError {
	appErr := NewError(
		ErrorCodeConversionFailed,
		"Failed to process audio. Please ensure ffmpeg is installed.",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewUpstreamTimeoutError(stage string, err error) *AppError {
	appErr := NewErrorWithDetails(
		ErrorCodeUpstreamTimeout,
		"The video source or encoder did not respond in time. Please try again",
		http.StatusGatewayTimeout,
		map[string]interface{}{
			"stage": stage,
		},
	)
	appErr.Err = err
	return appErr
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests. Please wait a moment",
		http.StatusTooManyRequests,
	)
}

func NewHistoryDisabledError() *AppError {
	return NewError(
		ErrorCodeHistoryDisabled,
		"Conversion history is not enabled",
		http.StatusServiceUnavailable,
	)
}

func NewDatabaseError(err error) *AppError {
	appErr := NewError(
		ErrorCodeDatabaseError,
		"Database operation failed",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Invalid or missing authentication",
		http.StatusUnauthorized,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}

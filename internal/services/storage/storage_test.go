package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestArchiveKey(t *testing.T) {
	testCases := []struct {
		prefix   string
		videoID  string
		filename string
		expected string
	}{
		{"mp3", "dQw4w9WgXcQ", "Never Gonna Give You Up.mp3", "mp3/dQw4w9WgXcQ/Never Gonna Give You Up.mp3"},
		{"", "dQw4w9WgXcQ", "audio.mp3", "dQw4w9WgXcQ/audio.mp3"},
		{"archive/mp3/", "abc", "x.mp3", "archive/mp3/abc/x.mp3"},
	}

	for _, tc := range testCases {
		if got := ArchiveKey(tc.prefix, tc.videoID, tc.filename); got != tc.expected {
			t.Errorf("ArchiveKey(%q, %q, %q) = %q, expected %q", tc.prefix, tc.videoID, tc.filename, got, tc.expected)
		}
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !isNotFoundError(fmt.Errorf("head: %w", &types.NotFound{})) {
		t.Error("Expected NotFound to be recognised")
	}
	if !isNotFoundError(&types.NoSuchKey{}) {
		t.Error("Expected NoSuchKey to be recognised")
	}
	if isNotFoundError(errors.New("access denied")) {
		t.Error("Expected other errors not to be treated as not found")
	}
}

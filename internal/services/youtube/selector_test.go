package youtube

import (
	"errors"
	"testing"
)

func TestSelectAudioFormat(t *testing.T) {
	aac := AudioFormat{Itag: 140, Codec: CodecAAC}
	opus := AudioFormat{Itag: 251, Codec: CodecOpus}
	vorbis := AudioFormat{Itag: 171, Codec: "vorbis"}
	other := AudioFormat{Itag: 999, Codec: "flac"}

	testCases := []struct {
		name     string
		formats  []AudioFormat
		expected int
	}{
		{"AAC after Opus", []AudioFormat{opus, aac}, 140},
		{"AAC before Opus", []AudioFormat{aac, opus}, 140},
		{"AAC last", []AudioFormat{vorbis, opus, other, aac}, 140},
		{"Opus without AAC", []AudioFormat{vorbis, opus}, 251},
		{"First remaining", []AudioFormat{vorbis, other}, 171},
		{"Single format", []AudioFormat{other}, 999},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selected, err := SelectAudioFormat(tc.formats)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if selected.Itag != tc.expected {
				t.Errorf("Expected itag %d, got %d", tc.expected, selected.Itag)
			}
		})
	}
}

func TestSelectAudioFormatEmpty(t *testing.T) {
	if _, err := SelectAudioFormat(nil); !errors.Is(err, ErrNoAudioAvailable) {
		t.Errorf("Expected ErrNoAudioAvailable, got %v", err)
	}
	if _, err := SelectAudioFormat([]AudioFormat{}); !errors.Is(err, ErrNoAudioAvailable) {
		t.Errorf("Expected ErrNoAudioAvailable, got %v", err)
	}
}

func TestSelectAudioFormatFirstAACWins(t *testing.T) {
	formats := []AudioFormat{
		{Itag: 139, Codec: CodecAAC, Bitrate: 48000},
		{Itag: 140, Codec: CodecAAC, Bitrate: 128000},
	}

	for i := 0; i < 5; i++ {
		selected, err := SelectAudioFormat(formats)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if selected.Itag != 139 {
			t.Fatalf("Expected itag 139 on run %d, got %d", i, selected.Itag)
		}
	}
}

package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)

// SanitizeFilename keeps word characters, whitespace and hyphens only.
// Whitespace runs collapse to a single space so CR/LF can never reach a header.
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// AttachmentFilename builds the download filename for a video title.
func AttachmentFilename(title, ext string) string {
	base := SanitizeFilename(title)
	if base == "" {
		base = "audio"
	}
	return base + "." + ext
}

// FormatDuration renders seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

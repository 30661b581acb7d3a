package youtube

import (
	"fmt"
	"regexp"
)

var (
	videoURLPattern = regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com/(watch\?v=|embed/|v/)|youtu\.be/)[\w-]+`)
	videoIDPattern  = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([\w-]+)`)
)

// IsValidURL reports whether candidate is a watch, embed, legacy /v/ or
// youtu.be link carrying a video id token.
func IsValidURL(candidate string) bool {
	return videoURLPattern.MatchString(candidate)
}

// ExtractVideoID returns the id token of a valid video URL.
func ExtractVideoID(url string) (string, error) {
	if !IsValidURL(url) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	matches := videoIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 || matches[1] == "" {
		return "", fmt.Errorf("%w: could not extract video ID from %s", ErrInvalidURL, url)
	}

	return matches[1], nil
}

package youtube

const (
	CodecAAC  = "mp4a.40.2"
	CodecOpus = "opus"
)

var codecPreference = []string{CodecAAC, CodecOpus}

// SelectAudioFormat picks AAC, then Opus, then whatever comes first.
func SelectAudioFormat(formats []AudioFormat) (AudioFormat, error) {
	if len(formats) == 0 {
		return AudioFormat{}, ErrNoAudioAvailable
	}

	for _, codec := range codecPreference {
		for _, format := range formats {
			if format.Codec == codec {
				return format, nil
			}
		}
	}

	return formats[0], nil
}

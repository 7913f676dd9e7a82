package workflow

import (
	"fmt"
	"strings"
	"time"
)

// audioExtensions is the allow-list used to classify picked files as playable
// audio. Anything else is treated as a generic attachment.
var audioExtensions = []string{".mp3", ".m4a", ".wav", ".aac", ".ogg", ".webm"}

// IsAudioFile reports whether a filename classifies as audio, by extension,
// case-insensitively.
func IsAudioFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// AudioSource is the audio input held by a session: either a microphone
// recording or a file picked from storage. Modeling it as a closed union keeps
// "both at once" unrepresentable.
type AudioSource interface {
	// Locator is the opaque handle to the audio bytes (file path or blob ref).
	Locator() string
	// ResolvesToAudio reports whether the source is playable audio.
	ResolvesToAudio() bool

	isAudioSource()
}

// RecordedAudio is a finished microphone recording. Duration is measured by
// the recorder itself, which matters for container formats that carry no
// duration metadata.
type RecordedAudio struct {
	URI      string
	Duration time.Duration
}

func (r RecordedAudio) Locator() string       { return r.URI }
func (r RecordedAudio) ResolvesToAudio() bool { return true }
func (r RecordedAudio) isAudioSource()        {}

// UploadedFile is a file picked from storage. It may or may not be audio.
type UploadedFile struct {
	URI  string
	Name string
}

func (u UploadedFile) Locator() string       { return u.URI }
func (u UploadedFile) ResolvesToAudio() bool { return IsAudioFile(u.Name) }
func (u UploadedFile) isAudioSource()        {}

// FormatTime renders a millisecond count as "MM:SS". Minutes are unbounded,
// seconds always two digits: 65000 -> "01:05", 3700000 -> "61:40".
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatDuration renders a duration as "MM:SS".
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Milliseconds())
}

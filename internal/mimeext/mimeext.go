package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used when MIME is unknown or empty.
	DefaultExt = "mp3"

	// ExtOgg is the file extension for Ogg-contained audio.
	ExtOgg = "ogg"
	// ExtM4A is the file extension for MP4 audio.
	ExtM4A = "m4a"
	// ExtM3U8 is the file extension for HLS playlist manifests.
	ExtM3U8 = "m3u8"

	// MimeAudioOgg is the MIME type for Ogg audio.
	MimeAudioOgg = "audio/ogg"
	// MimeAudioMPEG is the MIME type for MP3 audio.
	MimeAudioMPEG = "audio/mpeg"
	// MimeAudioMP4 is the MIME type for MP4 audio.
	MimeAudioMP4 = "audio/mp4"
	// MimeHLS is the MIME type for HLS playlist manifests.
	MimeHLS = "application/x-mpegurl"
)

// ExtFromMime returns the file extension (without dot) for given mime
// type. Codec parameters after ";" are ignored. Falls back to the
// subtype, or mp3 if the type is unusable.
func ExtFromMime(mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return DefaultExt
	}
	base := mime
	if i := strings.Index(mime, ";"); i >= 0 {
		base = strings.TrimSpace(mime[:i])
	}
	switch strings.ToLower(base) {
	case MimeAudioOgg:
		return ExtOgg
	case MimeAudioMPEG:
		return DefaultExt
	case MimeAudioMP4:
		return ExtM4A
	case MimeHLS, "application/vnd.apple.mpegurl":
		return ExtM3U8
	}
	parts := strings.Split(base, "/")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return DefaultExt
}

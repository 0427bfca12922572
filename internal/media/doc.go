// Package media wraps the ffmpeg and ffprobe command line tools: audio
// extraction for transcription, container inspection, and subtitle burn-in
// compositing.
package media

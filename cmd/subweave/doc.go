// Command subweave is the batch subtitle-translation pipeline CLI. It
// enqueues source videos, transcribes them with WhisperX, translates the
// transcript segment by segment, and burns the translated subtitles back
// into the video with ffmpeg.
package main

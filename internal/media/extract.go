package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExtractAudio extracts one audio stream from a source container.
// The output is a mono 16kHz PCM WAV file suitable for WhisperX.
func ExtractAudio(ctx context.Context, ffmpegBinary, source string, audioIndex int, dest string) error {
	if audioIndex < 0 {
		return fmt.Errorf("extract audio: invalid audio stream index %d", audioIndex)
	}
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BurnSubtitles composites an SRT document onto the video stream of the
// source container, re-encoding video while copying audio untouched. The
// operation is a single blocking call and is never retried here.
func BurnSubtitles(ctx context.Context, ffmpegBinary, videoPath, subtitlePath, outputPath string) error {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(videoPath) == "" {
		return fmt.Errorf("burn subtitles: video path required")
	}
	if strings.TrimSpace(subtitlePath) == "" {
		return fmt.Errorf("burn subtitles: subtitle path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return fmt.Errorf("burn subtitles: output path required")
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vf", "subtitles=" + escapeFilterPath(subtitlePath),
		"-c:a", "copy",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg burn subtitles: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument,
// where backslash, colon, and quote are metacharacters.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
	return replacer.Replace(path)
}

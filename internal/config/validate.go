package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("paths.staging_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("paths.output_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir must not be empty")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.TimeoutSeconds < 0 {
		return fmt.Errorf("translation.timeout_seconds must not be negative")
	}
	if c.Translation.MaxConcurrent < 0 {
		return fmt.Errorf("translation.max_concurrent must not be negative")
	}
	if strings.TrimSpace(c.Translation.Model) == "" {
		return fmt.Errorf("translation.model must not be empty")
	}
	// The API key is deliberately not validated here; a missing key should
	// fail the translation stage of a run, not config load for unrelated
	// commands like queue inspection.
	return nil
}

func (c *Config) validateTranscription() error {
	switch strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod)) {
	case "", "silero":
	case "pyannote":
		if strings.TrimSpace(c.Transcription.HFToken) == "" {
			return fmt.Errorf("transcription.hf_token is required when vad_method is %q", "pyannote")
		}
	default:
		return fmt.Errorf("transcription.vad_method must be %q or %q", "silero", "pyannote")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return fmt.Errorf("workflow.queue_poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q", "console", "json")
	}
	return nil
}

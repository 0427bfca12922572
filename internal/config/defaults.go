package config

const (
	defaultStagingDir         = "~/.local/share/subweave/staging"
	defaultOutputDir          = "~/Videos/subweave"
	defaultLogDir             = "~/.local/share/subweave/logs"
	defaultTranslateBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslateModel     = "openai/gpt-4o-mini"
	defaultTranslateTimeout   = 30
	defaultTranslateWorkers   = 8
	defaultSourceLanguage     = "en"
	defaultTargetLanguage     = "es"
	defaultWhisperXModel      = "large-v3"
	defaultVADMethod          = "silero"
	defaultQueuePollInterval  = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Translation: Translation{
			BaseURL:        defaultTranslateBaseURL,
			Model:          defaultTranslateModel,
			TimeoutSeconds: defaultTranslateTimeout,
			MaxConcurrent:  defaultTranslateWorkers,
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
		},
		Transcription: Transcription{
			WhisperXModel: defaultWhisperXModel,
			VADMethod:     defaultVADMethod,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	defaultDataDir             = "~/.local/share/teachassist"
	defaultLogDir              = "~/.local/share/teachassist/logs"
	defaultUploadDir           = "~/.local/share/teachassist/uploads"
	defaultAPIBind             = "127.0.0.1:7910"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "anthropic/claude-sonnet-4"
	defaultLLMReferer          = "https://github.com/teachassist/teachassist"
	defaultLLMTitle            = "TeachAssist"
	defaultLLMTimeoutSeconds   = 120
	defaultTranslationLanguage = "es"
	defaultMaxAttachmentBytes  = 32 * 1024
	defaultQueuePollInterval   = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			UploadDir: defaultUploadDir,
			APIBind:   defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Generation: Generation{
			TranslationLanguage: defaultTranslationLanguage,
			MaxAttachmentBytes:  defaultMaxAttachmentBytes,
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

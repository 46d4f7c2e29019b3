package config

const (
	defaultWorkspaceDir       = "~/.local/share/slidecast/workspace"
	defaultStateDir           = "~/.local/share/slidecast"
	defaultLogDir             = "~/.local/share/slidecast/logs"
	defaultOutputDir          = "~/Videos/slidecast"
	defaultOpenAIBaseURL      = "https://api.openai.com/v1"
	defaultSpeechModel        = "tts-1"
	defaultVoice              = "alloy"
	defaultTranscriptionModel = "whisper-1"
	defaultOpenAITimeout      = 300
	defaultOfflineCommand     = "espeak-ng"
	defaultFFmpeg             = "ffmpeg"
	defaultFFprobe            = "ffprobe"
	defaultMutool             = "mutool"
	defaultScriptMarker       = "#NEXT"
	defaultWatchDir           = "~/.local/share/slidecast/inbox"
	defaultWatchSettleMillis  = 500
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
			OutputDir:    defaultOutputDir,
		},
		OpenAI: OpenAI{
			BaseURL:            defaultOpenAIBaseURL,
			SpeechModel:        defaultSpeechModel,
			Voice:              defaultVoice,
			TranscriptionModel: defaultTranscriptionModel,
			TimeoutSeconds:     defaultOpenAITimeout,
		},
		OfflineVoice: OfflineVoice{
			Command: defaultOfflineCommand,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			Mutool:  defaultMutool,
		},
		Encoding: Encoding{
			VerifyOutput: true,
		},
		Script: Script{
			Marker: defaultScriptMarker,
		},
		Watch: Watch{
			Dir:          defaultWatchDir,
			SettleMillis: defaultWatchSettleMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	defaultConfigPath   = "~/.config/contentstate/config.toml"
	projectConfigName   = "contentstate.toml"
	defaultDataDir      = "~/.local/share/contentstate"
	defaultLogDir       = "~/.local/share/contentstate/logs"
	defaultAPIBind      = "127.0.0.1:7491"
	defaultHistoryMax   = 1000
	defaultBatchWorkers = 4
	defaultBatchMaxRefs = 10000
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultViewerParam  = "iiif-content"
	defaultTheseusURL   = "https://theseusviewer.org/"
	defaultCloverURL    = "https://samvera-labs.github.io/clover-iiif/"
	envAPIBind          = "CONTENTSTATE_API_BIND"
	envAPIToken         = "CONTENTSTATE_API_TOKEN"
	envLogLevel         = "CONTENTSTATE_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMax,
		},
		Batch: Batch{
			Workers:       defaultBatchWorkers,
			MaxReferences: defaultBatchMaxRefs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Viewers: defaultViewers(),
	}
}

func defaultViewers() []Viewer {
	return []Viewer{
		{Name: "theseus", Label: "Theseus", BaseURL: defaultTheseusURL, Param: defaultViewerParam},
		{Name: "clover", Label: "Clover", BaseURL: defaultCloverURL, Param: defaultViewerParam},
	}
}

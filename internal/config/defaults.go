package config

const (
	defaultHost               = "app.embdr.com"
	defaultPort               = 80
	defaultProtocol           = "http"
	defaultBasePath           = "/api"
	defaultRequestTimeout     = 30
	defaultInitialDelayMs     = 2000
	defaultBackoffDenominator = 4
	defaultHistoryDir         = "~/.local/share/embdr"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Host:           defaultHost,
			Port:           defaultPort,
			Protocol:       defaultProtocol,
			BasePath:       defaultBasePath,
			StrictSSL:      true,
			RequestTimeout: defaultRequestTimeout,
		},
		Polling: Polling{
			InitialDelayMs:     defaultInitialDelayMs,
			BackoffDenominator: defaultBackoffDenominator,
		},
		History: History{
			Enabled: true,
			Dir:     defaultHistoryDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package offlinegate

import "github.com/arcbank/offlinegate/internal/ports"

// options holds the optional dependencies for a Gate.
type options struct {
	logger     Logger
	httpClient ports.HTTPClient
	configPath string
}

func defaultOptions(client ports.HTTPClient) options {
	return options{httpClient: client}
}

// Option customizes a Gate.
type Option func(*options)

// WithLogger sets the logger. Defaults to a no-op logger for embedding.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHTTPClient replaces the upstream HTTP client, e.g. to inject a fake
// in tests or tune transport settings.
func WithHTTPClient(c ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithConfigFile names the TOML file backing this configuration so the
// gateway can hot-reload it when WatchConfig is enabled.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

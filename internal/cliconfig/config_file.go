package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr       string   `toml:"listen_addr"`
	UpstreamURL      string   `toml:"upstream_url"`
	DataDir          string   `toml:"data_dir"`
	CacheVersion     string   `toml:"cache_version"`
	StaticPrefix     string   `toml:"static_prefix"`
	APIPrefix        string   `toml:"api_prefix"`
	AuthPrefixes     []string `toml:"auth_prefixes"`
	CacheableRoutes  []string `toml:"cacheable_routes"`
	SessionCheckPath string   `toml:"session_check_path"`
	OfflinePagePath  string   `toml:"offline_page"`
	SyncSchedule     string   `toml:"sync_schedule"`
	HTTPTimeout      string   `toml:"http_timeout"`
	WatchConfig      *bool    `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.offlinegate/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".offlinegate", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-addr", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("upstream-url", fc.UpstreamURL, &cfg.UpstreamURL)
	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("cache-version", fc.CacheVersion, &cfg.CacheVersion)
	s.setString("static-prefix", fc.StaticPrefix, &cfg.StaticPrefix)
	s.setString("api-prefix", fc.APIPrefix, &cfg.APIPrefix)
	s.setString("session-check-path", fc.SessionCheckPath, &cfg.SessionCheckPath)
	s.setString("offline-page", fc.OfflinePagePath, &cfg.OfflinePagePath)
	s.setString("sync-schedule", fc.SyncSchedule, &cfg.SyncSchedule)

	s.setStrings("auth-prefixes", fc.AuthPrefixes, &cfg.AuthPrefixes)
	s.setStrings("cacheable-routes", fc.CacheableRoutes, &cfg.CacheableRoutes)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (OFFLINEGATE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-addr", os.Getenv("OFFLINEGATE_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("upstream-url", os.Getenv("OFFLINEGATE_UPSTREAM_URL"), &cfg.UpstreamURL)
	s.setString("data-dir", os.Getenv("OFFLINEGATE_DATA_DIR"), &cfg.DataDir)
	s.setString("cache-version", os.Getenv("OFFLINEGATE_CACHE_VERSION"), &cfg.CacheVersion)
	s.setString("static-prefix", os.Getenv("OFFLINEGATE_STATIC_PREFIX"), &cfg.StaticPrefix)
	s.setString("api-prefix", os.Getenv("OFFLINEGATE_API_PREFIX"), &cfg.APIPrefix)
	s.setString("session-check-path", os.Getenv("OFFLINEGATE_SESSION_CHECK_PATH"), &cfg.SessionCheckPath)
	s.setString("offline-page", os.Getenv("OFFLINEGATE_OFFLINE_PAGE"), &cfg.OfflinePagePath)
	s.setString("sync-schedule", os.Getenv("OFFLINEGATE_SYNC_SCHEDULE"), &cfg.SyncSchedule)

	s.setStringsFromString("auth-prefixes", os.Getenv("OFFLINEGATE_AUTH_PREFIXES"), &cfg.AuthPrefixes)
	s.setStringsFromString("cacheable-routes", os.Getenv("OFFLINEGATE_CACHEABLE_ROUTES"), &cfg.CacheableRoutes)

	if err := s.setDuration("timeout", os.Getenv("OFFLINEGATE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("OFFLINEGATE_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}

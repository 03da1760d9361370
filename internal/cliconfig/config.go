package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcbank/offlinegate/internal/domain"
)

// Config holds CLI configuration for offlinegate.
type Config struct {
	ListenAddr  string
	UpstreamURL string
	DataDir     string

	CacheVersion string

	StaticPrefix     string
	APIPrefix        string
	AuthPrefixes     []string
	CacheableRoutes  []string
	SessionCheckPath string
	OfflinePagePath  string

	SyncSchedule string
	HTTPTimeout  time.Duration
	WatchConfig  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":8790",
		DataDir:          "",
		CacheVersion:     "v1",
		StaticPrefix:     "/static/",
		APIPrefix:        "/api/",
		AuthPrefixes:     []string{"/dashboard", "/accounts", "/transfers"},
		CacheableRoutes:  []string{"/api/session", "/api/accounts"},
		SessionCheckPath: "/api/session",
		OfflinePagePath:  "/offline.html",
		SyncSchedule:     "@every 30s",
		HTTPTimeout:      15 * time.Second,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.UpstreamURL == "" {
		return fmt.Errorf("upstream-url is required")
	}
	c.UpstreamURL = strings.TrimRight(c.UpstreamURL, "/")

	if c.ListenAddr == "" {
		return fmt.Errorf("listen-addr is required")
	}
	if c.CacheVersion == "" {
		return fmt.Errorf("cache-version is required")
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.SessionCheckPath == "" {
		return fmt.Errorf("session-check-path is required")
	}
	if c.OfflinePagePath == "" {
		return fmt.Errorf("offline-page is required")
	}
	return nil
}

// RouteTable builds the classification tables from the configured prefixes.
func (c *Config) RouteTable() *domain.RouteTable {
	return &domain.RouteTable{
		StaticPrefix:     c.StaticPrefix,
		APIPrefix:        c.APIPrefix,
		AuthPrefixes:     append([]string(nil), c.AuthPrefixes...),
		CacheableRoutes:  append([]string(nil), c.CacheableRoutes...),
		SessionCheckPath: c.SessionCheckPath,
		OfflinePagePath:  c.OfflinePagePath,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// setStringsFromString splits a comma-separated env value into a slice.
func (s *configSetter) setStringsFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

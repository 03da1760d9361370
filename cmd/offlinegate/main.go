package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	offlinegate "github.com/arcbank/offlinegate"
	"github.com/arcbank/offlinegate/internal/cliconfig"
	"github.com/arcbank/offlinegate/pkg/log"
)

const helpDescription = `
Offline-resilience gateway for the arcbank web client.

Intercepts every outgoing GET/POST from the hosting pages, serves cached
responses under connectivity loss, durably queues mutations that fail due
to connectivity, and replays them once the network returns.

Highlights:
  - Cache-first static assets, network-first API data with cache fallback.
  - Durable mutation queue (bbolt) with at-least-once background replay.
  - Control endpoints and an SSE bridge for the hosting pages.
  - Configure via file, env (OFFLINEGATE_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  offlinegate --upstream-url https://api.arcbank.example --data-dir /var/lib/offlinegate
  offlinegate --config $HOME/.offlinegate/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "offlinegate",
		Short:   "Offline-resilience gateway for the arcbank web client",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.offlinegate/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info().Interface("config", cfg).Msg("configuration")

			opts := []offlinegate.Option{
				offlinegate.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			}
			if cfg.WatchConfig && cfgFile != "" {
				opts = append(opts, offlinegate.WithConfigFile(cfgFile))
			}

			g, err := offlinegate.New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("create gateway: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := g.Start(ctx); err != nil {
				return fmt.Errorf("start gateway: %w", err)
			}
			logger.Info().Str("addr", g.Addr()).Msg("gateway listening")

			<-sigCh
			logger.Info().Msg("received signal, stopping...")

			if err := g.Stop(); err != nil {
				return fmt.Errorf("stop gateway: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.offlinegate/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address the gateway listens on")
	root.Flags().StringVar(&cfg.UpstreamURL, "upstream-url", cfg.UpstreamURL, "base URL of the remote API server")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the durable store")
	root.Flags().StringVar(&cfg.CacheVersion, "cache-version", cfg.CacheVersion, "active cache version; changing it evicts stale partitions")

	root.Flags().StringVar(&cfg.StaticPrefix, "static-prefix", cfg.StaticPrefix, "path prefix for static assets")
	root.Flags().StringVar(&cfg.APIPrefix, "api-prefix", cfg.APIPrefix, "path prefix for API routes")
	root.Flags().StringSliceVar(&cfg.AuthPrefixes, "auth-prefixes", cfg.AuthPrefixes, "path prefixes that require an authenticated session")
	root.Flags().StringSliceVar(&cfg.CacheableRoutes, "cacheable-routes", cfg.CacheableRoutes, "API paths whose responses may be cached")
	root.Flags().StringVar(&cfg.SessionCheckPath, "session-check-path", cfg.SessionCheckPath, "session-check endpoint path")
	root.Flags().StringVar(&cfg.OfflinePagePath, "offline-page", cfg.OfflinePagePath, "path of the offline fallback page")

	root.Flags().StringVar(&cfg.SyncSchedule, "sync-schedule", cfg.SyncSchedule, "cron spec for the background sync probe")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "upstream HTTP timeout")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "hot-reload route tables when the config file changes")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("offlinegate")
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/gallery/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand. Empty
// values leave the environment or config file in charge.
type rootOptions struct {
	configPath string
	host       string
	port       int
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCommand(opts)

	root := &cobra.Command{
		Use:   "server",
		Short: "Gallery API server",
		Long: `Gallery API server backs the public gallery site and its admin console.

It serves the public catalogue (artists, artworks, editions, events, posts
and pages), accepts contact messages and waitlist sign-ups, and exposes the
authenticated admin API including media uploads to S3-compatible storage.

Running the binary without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (environment variables still win)")
	flags.StringVar(&opts.host, "host", "", "server host address (default: 127.0.0.1)")
	flags.IntVar(&opts.port, "port", 0, "server port (default: 3000)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default: info)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json, console (default: json)")

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(opts))
	root.AddCommand(newHealthcheckCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when one is given, otherwise the
// environment, then applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	o.apply(&cfg)
	return cfg, nil
}

func (o *rootOptions) apply(cfg *config.Config) {
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
}

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/gallery/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"help flag", []string{"--help"}, "Gallery API server", false},
		{"short help flag", []string{"-h"}, "Gallery API server", false},
		{"invalid flag", []string{"--invalid-flag"}, "unknown flag: --invalid-flag", true},
		{"unknown command", []string{"scrape"}, "unknown command", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr && err == nil {
				t.Fatal("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out+errString(err), tt.want) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func TestRootCommandLayout(t *testing.T) {
	root := newRootCommand()

	for _, flag := range []string{"config", "host", "port", "log-level", "log-format"} {
		require.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %s", flag)
	}

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	require.Subset(t, names, []string{"serve", "migrate", "healthcheck", "version"})
}

func TestRootOptionsApply(t *testing.T) {
	cfg := config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 3000},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}

	(&rootOptions{}).apply(&cfg)
	require.Equal(t, "127.0.0.1:3000", cfg.Server.Addr())

	(&rootOptions{host: "0.0.0.0", port: 8080, logLevel: "debug", logFormat: "console"}).apply(&cfg)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestServeFailsWithoutConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "serve")
	require.ErrorContains(t, err, "DATABASE_URL is required")
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// healthResponse mirrors the body served at /health.
type healthResponse struct {
	Status string                     `json:"status"`
	Checks map[string]json.RawMessage `json:"checks,omitempty"`
}

func newHealthcheckCommand(opts *rootOptions) *cobra.Command {
	var (
		timeout time.Duration
		url     string
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check whether a running server is healthy",
		Long: `Calls the /health endpoint of a running server and exits non-zero unless
it reports "healthy". Intended for container HEALTHCHECK directives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := url
			if target == "" {
				target = defaultHealthURL(opts.port)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := checkHealth(ctx, http.DefaultClient, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", status)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().StringVar(&url, "url", "", "health URL (default: http://localhost:$PORT/health)")
	return cmd
}

func defaultHealthURL(flagPort int) string {
	port := flagPort
	if port == 0 {
		port = 3000
		if env, err := strconv.Atoi(os.Getenv("PORT")); err == nil && env > 0 {
			port = env
		}
	}
	return fmt.Sprintf("http://localhost:%d/health", port)
}

// checkHealth returns the reported status, or an error unless the server
// answered 200 with status "healthy".
func checkHealth(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid health response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "healthy" {
		return body.Status, fmt.Errorf("unhealthy: status %d, %q", resp.StatusCode, body.Status)
	}
	return body.Status, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/pagemap-sessions/internal/adapters/httpapi"
	statusadapter "github.com/bnema/pagemap-sessions/internal/adapters/render/status"
	"github.com/bnema/pagemap-sessions/internal/config"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const statusRequestTimeout = 10 * time.Second

var errServerUnavailable = errors.New("pms server unavailable")

func newStatusCmd(v *viper.Viper) *cobra.Command {
	var (
		addr   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show idle eviction stats of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(addr) == "" {
				cfg, err := config.Load(v)
				if err != nil {
					return err
				}
				addr = cfg.Server.Addr
			}
			baseURL := serverURL(addr)
			client := &http.Client{Timeout: statusRequestTimeout}

			fetch := func(ctx context.Context) (idle.Stats, error) {
				return fetchIdleStats(ctx, client, baseURL)
			}

			if asJSON {
				stats, err := fetch(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			stats, err := fetchIdleStatsWithSpinner(cmd.Context(), cmd.ErrOrStderr(), addr, fetch)
			if err != nil {
				return err
			}

			rendered, err := statusadapter.Render(stats, statusadapter.RenderOptions{
				Now:    time.Now(),
				Server: addr,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address (defaults to server.addr)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON stats")

	return cmd
}

func serverURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

func fetchIdleStats(ctx context.Context, client *http.Client, baseURL string) (idle.Stats, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/idle", nil)
	if err != nil {
		return idle.Stats{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "pms/status")

	response, err := client.Do(request)
	if err != nil {
		return idle.Stats{}, fmt.Errorf("%w: %w", errServerUnavailable, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return idle.Stats{}, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		var apiErr httpapi.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			return idle.Stats{}, fmt.Errorf("status %d: %s: %s", response.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return idle.Stats{}, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var stats idle.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return idle.Stats{}, fmt.Errorf("decode stats: %w", err)
	}

	return stats, nil
}

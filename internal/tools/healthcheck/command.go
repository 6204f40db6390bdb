// Package healthcheck probes a running node from the outside: liveness and
// whether the routing endpoint answers with a sane decision.
package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/common"
	"github.com/ibrahimvarli/noresrp-sub001/internal/tools/ui"
)

type options struct {
	nodeURL string
	ci      bool
	timeout time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "healthcheck",
		Short:         "Probe a multiplayer node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.nodeURL, "node-url", "http://localhost:8080", "base URL of the node to probe")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "probe timeout")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run all probes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "healthcheck run", func(ctx context.Context) ([]string, error) {
				return probeAll(ctx, *opts)
			})
			return err
		},
	})
	return root
}

func run(opts *options, title string, action ui.Action) ([]string, error) {
	wrapped := func(ctx context.Context) ([]string, error) {
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		return action(ctx)
	}
	if opts.ci {
		details, err := wrapped(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
		return details, nil
	}
	return ui.Run(title, wrapped)
}

func probeAll(ctx context.Context, opts options) ([]string, error) {
	var details []string

	body, err := nodeGET(ctx, opts, "/healthz")
	if err != nil {
		return details, fmt.Errorf("liveness: %w", err)
	}
	details = append(details, "liveness: ok")

	var health struct {
		Data struct {
			NodeID string `json:"node_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &health); err == nil && health.Data.NodeID != "" {
		details = append(details, "node_id: "+health.Data.NodeID)
	}

	body, err = nodeGET(ctx, opts, "/api/v1/route")
	if err != nil {
		return details, fmt.Errorf("route: %w", err)
	}
	var route struct {
		Data struct {
			Decision struct {
				Redirect bool   `json:"redirect"`
				NodeID   string `json:"node_id"`
			} `json:"decision"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &route); err != nil {
		return details, fmt.Errorf("route: decode response: %w", err)
	}
	if route.Data.Decision.Redirect {
		details = append(details, "route: redirect to "+route.Data.Decision.NodeID)
	} else {
		details = append(details, "route: stay")
	}
	return details, nil
}

func nodeGET(ctx context.Context, opts options, path string) ([]byte, error) {
	base, err := url.Parse(opts.nodeURL)
	if err != nil {
		return nil, fmt.Errorf("parse node url: %w", err)
	}
	target := base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return body, nil
}

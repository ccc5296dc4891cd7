package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/internal/server"
	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/metrics"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// apiKeyPrefix scopes service cache entries away from CLI entries when both
// share a store.
const apiKeyPrefix = "api:"

type serveOptions struct {
	addr     string
	redisURL string
	noCache  bool
	maxBody  int64
	timeout  time.Duration
}

// serveCommand creates the serve command: an HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{
		addr:    ":8080",
		maxBody: server.DefaultMaxBodyBytes,
		timeout: server.DefaultTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Run the HTTP render service.

POST a {"tree": ..., "options": ...} document to /v1/render or /v1/layout.
Prometheus metrics are exposed on /metrics.

With --redis-url, results are cached in Redis and shared between instances;
otherwise the local file cache is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for a shared cache (redis://host:6379/0)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request time limit")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	metrics.Register()

	runner, err := c.newServiceRunner(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(loggerFromContext(ctx)),
		server.WithMaxBodyBytes(opts.maxBody),
		server.WithTimeout(opts.timeout))

	printInfo("Serving on %s", opts.addr)
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) newServiceRunner(ctx context.Context, opts serveOptions) (*pipeline.Runner, error) {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), apiKeyPrefix)
	if opts.redisURL != "" && !opts.noCache {
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return pipeline.NewRunner(cache.Instrument(rc), keyer, c.Logger), nil
	}
	cc, err := c.newCache(opts.noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(cc), keyer, c.Logger), nil
}

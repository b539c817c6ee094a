package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/internal/server"
	"github.com/matzehuels/blockpad/pkg/cache"
)

// serveCommand creates the serve command running the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		cacheBackend string
		libraries    []string
	)
	opts := &storeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP document server",
		Long: `Serve stored documents and the render pipeline over HTTP.

The server exposes a REST API under /api/v1 for document CRUD and
rendering. Store and cache backends are configured with the same flags as
the docs command; the defaults (in-memory store, in-memory cache) suit
local development.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, cacheBackend, libraries, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&cacheBackend, "cache", "memory", "cache backend (memory, file, redis, none)")
	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "additional toolbox library files (repeatable)")
	opts.register(cmd)

	// The server defaults to an in-memory store; the file default on the
	// shared flag set suits the docs command.
	opts.Backend = "memory"
	cmd.PersistentFlags().Lookup("store").DefValue = "memory"

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, cacheBackend string, libraries []string, opts *storeOptions) error {
	st, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ca, err := c.serverCache(ctx, cacheBackend, opts)
	if err != nil {
		return err
	}

	tb, err := loadToolbox(libraries)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Store:   st,
		Backend: opts.Backend,
		Cache:   ca,
		Toolbox: tb,
		Logger:  c.Logger,
	})

	printSuccess("Blockpad server listening on %s", addr)
	printKeyValue("Store", StyleValue.Render(opts.Backend))
	printKeyValue("Cache", StyleValue.Render(cacheBackend))
	printNewline()

	return srv.ListenAndServe(ctx, addr)
}

// serverCache builds the cache backend for the server. The redis cache
// shares the redis connection flags with the store.
func (c *CLI) serverCache(ctx context.Context, backend string, opts *storeOptions) (cache.Cache, error) {
	switch backend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "file":
		dir, err := cacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case "redis":
		var ca cache.Cache
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			ca, err = cache.NewRedisCache(ctx, cache.RedisConfig{
				Addr:     opts.RedisAddr,
				Password: opts.RedisPassword,
				DB:       opts.RedisDB,
			})
			if err != nil {
				return cache.Retryable(err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return ca, nil
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (must be 'memory', 'file', 'redis', or 'none')", backend)
	}
}

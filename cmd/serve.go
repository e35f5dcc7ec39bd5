/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacobarthurs/a11yscan/internal/cache"
	"github.com/jacobarthurs/a11yscan/internal/logging"
	"github.com/jacobarthurs/a11yscan/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API over HTTP",
	Long: `Run an HTTP service that analyzes uploaded HTML documents.

POST /api/analyze takes a multipart "file" field (.html or .htm, at most
max_upload_kb) and returns the report as JSON. GET /health reports liveness.

Reports are cached by document content. The cache is in-process unless
--redis or REDIS_URL names a Redis server. When a database resolves, every
new report is also saved to history.`,
	Example: `  # Listen on the default port
  a11yscan serve

  # Share the cache across replicas
  a11yscan serve --addr :9000 --redis redis://localhost:6379/0

  # Upload a page
  curl -F file=@index.html http://localhost:8080/api/analyze`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		redisURL, _ := cmd.Flags().GetString("redis")
		cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
		cacheSize, _ := cmd.Flags().GetInt("cache-size")

		if addr == "" {
			addr = ":8080"
			if port := os.Getenv("PORT"); port != "" {
				addr = ":" + port
			}
		}
		if redisURL == "" {
			redisURL = os.Getenv("REDIS_URL")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := cfg.Analyzer()
		if err != nil {
			return err
		}

		connStr, err := resolveConnStr(cmd)
		if err != nil {
			return err
		}

		// Request lines are logged at info.
		logging.SetLevel(zap.InfoLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var backend cache.Backend
		if redisURL != "" {
			r, err := cache.NewRedis(ctx, redisURL, cache.DefaultRedisPrefix)
			if err != nil {
				return err
			}
			backend = r
			logging.Logger.Infow("using redis cache")
		} else {
			backend = cache.NewMemory(cacheSize, time.Minute)
		}
		defer backend.Close()

		srv, err := server.New(server.Options{
			Analyzer:       a,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Cache:          backend,
			CacheTTL:       cacheTTL,
			ConnStr:        connStr,
			Logger:         logging.Logger,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default \":$PORT\" or \":8080\")")
	serveCmd.Flags().String("redis", "", "Redis URL for the report cache (default $REDIS_URL)")
	serveCmd.Flags().Duration("cache-ttl", server.DefaultCacheTTL, "How long cached reports are kept")
	serveCmd.Flags().Int("cache-size", 1000, "Maximum reports held by the in-process cache")
	addAnalyzerFlags(serveCmd)
	addStoreFlags(serveCmd)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wizenheimer/lexdex/internal/api"
	"github.com/wizenheimer/lexdex/internal/cache"
	"github.com/wizenheimer/lexdex/internal/config"
	"github.com/wizenheimer/lexdex/internal/engine"
	"github.com/wizenheimer/lexdex/internal/index"
	"github.com/wizenheimer/lexdex/internal/metrics"
)

var httpAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over HTTP and WebSocket",
	Long: `serve loads the same dictionary/postings/metadata index as a
one-shot search and exposes it as a long-running HTTP server: POST
/search, GET /suggest, GET /ws/suggestions, GET /health, and GET
/metrics (Prometheus).`,
	RunE: runServe,
}

func init() {
	cfg := config.Default()
	serveCmd.Flags().StringVar(&httpAddr, "addr", cfg.HTTPAddr, "Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr = httpAddr
	}
	if cmd.Flags().Changed("dict-file") {
		cfg.DictFile = dictFile
	}
	if cmd.Flags().Changed("postings-file") {
		cfg.PostingsFile = postingsFile
	}
	if cmd.Flags().Changed("metadata-file") {
		cfg.MetadataFile = metadataFile
	}

	idx, err := index.Open(cfg.DictFile, cfg.PostingsFile, cfg.MetadataFile)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	reg := prometheus.NewRegistry()
	obs := metrics.NewPrometheusObserver(reg)
	eng := engine.New(idx, cfg.Rank, obs)

	resultCache := cache.New(cfg.CacheTTL)
	go sweepPeriodically(cmd.Context(), resultCache)

	srv := api.NewServer(eng, resultCache, obs, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	slog.Info("lexsearch: serving", "addr", cfg.HTTPAddr)
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: srv}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// sweepPeriodically evicts expired cache entries on a fixed interval so
// the cache's map doesn't grow unbounded under a long-running server.
func sweepPeriodically(ctx context.Context, c *cache.Cache) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

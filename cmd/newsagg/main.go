// NewsAgg fetches recent news for a fixed query, optionally summarizes each
// article through a hosted model and tags it with a topic category.
//
// Usage:
//
//	newsagg serve                     # HTTP API on $PORT
//	newsagg fetch --summary --group   # one run, JSON to stdout
//	newsagg version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/newsagg/internal/api"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/pipeline"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/sources"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/summary"
	"github.com/RobinCoderZhao/newsagg/pkg/llm"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "newsagg",
		Short:         "News aggregator with summaries and topic categories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to YAML config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(fetchCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func fetchCmd(configPath *string) *cobra.Command {
	var withSummary, group bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the pipeline once and print the response JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), *configPath, pipeline.Options{Summarize: withSummary, Group: group})
		},
	}

	cmd.Flags().BoolVar(&withSummary, "summary", false, "summarize each article")
	cmd.Flags().BoolVar(&group, "group", false, "group articles by category")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsagg %s\n", version)
		},
	}
}

// app is the wired component graph shared by serve and fetch.
type app struct {
	cfg        Config
	logger     *slog.Logger
	client     llm.Client
	summarizer *summary.Summarizer
	cache      *summary.Cache
	pipeline   *pipeline.Pipeline
}

func newApp(configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	client, err := llm.NewClient(cfg.Summarizer.Config)
	if err != nil {
		return nil, fmt.Errorf("create summarization client: %w", err)
	}
	if cfg.Summarizer.APIKey == "" {
		logger.Warn("summarizer API key not set, summaries will degrade to original text")
	}

	summ := summary.NewSummarizer(client,
		summary.WithTimeout(cfg.Summarizer.Timeout),
		summary.WithRateLimit(cfg.Summarizer.RPM, cfg.Summarizer.Burst),
		summary.WithSummarizerLogger(logger),
	)
	cache := summary.NewCache(summ, cfg.Cache, summary.WithCacheLogger(logger))
	source := sources.NewNewsAPISource(cfg.NewsAPI)
	p := pipeline.New(source, cache).WithLogger(logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		summarizer: summ,
		cache:      cache,
		pipeline:   p,
	}, nil
}

func (a *app) Close() error {
	return a.client.Close()
}

func runServe(configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.NewServer(a.pipeline,
		api.WithStats(a.cache, a.summarizer),
		api.WithCORSOrigin(a.cfg.Server.CORSOrigin),
		api.WithLogger(a.logger),
	)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting news API server",
			"port", a.cfg.Server.Port,
			"query", a.cfg.NewsAPI.Query,
			"summarizer", a.client.Provider(),
			"model", a.cfg.Summarizer.Model,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	a.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runFetch(ctx context.Context, configPath string, opts pipeline.Options) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	return writeNews(os.Stdout, res, opts.Group)
}

func writeNews(w io.Writer, res *pipeline.Result, group bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(api.NewsResponse(res, group))
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ChainSafe/forest-explorer/explorer"
	"github.com/ChainSafe/forest-explorer/log"
	"github.com/ChainSafe/forest-explorer/lotusrpc"
	"github.com/ChainSafe/forest-explorer/metrics"
	"github.com/ChainSafe/forest-explorer/redis"
	"github.com/ChainSafe/forest-explorer/render"
)

var (
	configFlag = cli.StringSliceFlag{
		Name:  "config, c",
		Usage: "directory to search for " + configName + ".yaml (repeatable)",
	}
	providerFlag = cli.StringFlag{
		Name:  "provider, p",
		Usage: "provider name or RPC URL to start with",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout, t",
		Value: 30 * time.Second,
		Usage: "how long to wait for both answers",
	}
)

func newCommands() []cli.Command {
	return []cli.Command{
		{
			Name:   "providers",
			Usage:  "list selectable RPC providers",
			Action: listProviders,
			Flags:  []cli.Flag{configFlag},
		},
		{
			Name:   "query",
			Usage:  "fetch network name and version once",
			Action: queryOnce,
			Flags:  []cli.Flag{configFlag, providerFlag, timeoutFlag},
		},
		{
			Name:      "watch",
			Usage:     "render both facts and switch providers from stdin",
			ArgsUsage: "(type a provider name or URL and press enter; 'quit' exits)",
			Action:    watch,
			Flags:     []cli.Flag{configFlag, providerFlag},
		},
	}
}

func setup(ctx *cli.Context) (*appConfig, *zap.Logger, error) {
	cfg, err := loadConfig(ctx.StringSlice("config"))
	if err != nil {
		return nil, nil, err
	}
	if p := ctx.String("provider"); p != "" {
		cfg.Explorer.DefaultProvider = p
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	log.SetLogger(logger)
	return cfg, logger, nil
}

func newExplorer(cfg *appConfig, logger *zap.Logger) (*explorer.Explorer, error) {
	client := lotusrpc.New(lotusrpc.WithLogger(logger))
	return explorer.New(cfg.Explorer, client, logger)
}

func listProviders(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.StringSlice("config"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, p := range cfg.Explorer.Providers {
		marker := " "
		if p.Name == cfg.Explorer.DefaultProvider {
			marker = "*"
		}
		fmt.Fprintf(ctx.App.Writer, "%s %-10s %-20s %s\n", marker, p.Name, p.Label, p.URL)
	}
	return nil
}

func queryOnce(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = logger.Sync() }()

	e, err := newExplorer(cfg, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer e.Close()

	gctx, cancel := context.WithTimeout(context.Background(), ctx.Duration("timeout"))
	defer cancel()
	s, err := e.Await(gctx)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("waiting for %s: %w", s.Endpoint, err), 1)
	}

	w := ctx.App.Writer
	fmt.Fprintln(w, render.Line(explorer.NetworkNameQuery, s.NetworkName.Facets()))
	fmt.Fprintln(w, render.Line(explorer.NetworkVersionQuery, s.NetworkVersion.Facets()))
	if s.NetworkName.Failed() || s.NetworkVersion.Failed() {
		return cli.NewExitError("rpc endpoint "+s.Endpoint+" is unavailable", 1)
	}
	return nil
}

func watch(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = logger.Sync() }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newExplorer(cfg, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer e.Close()

	w := ctx.App.Writer
	for _, p := range e.Catalog().Providers() {
		fmt.Fprintf(w, "  %-10s %s\n", p.Name, p.Label)
	}
	unbind := e.Bind(render.NewConsole(w))
	defer unbind()

	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(sigCtx, cfg.Redis)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("redis: %w", err), 1)
		}
		defer rdb.Close()
		session := uuid.NewString()
		logger.Info("publishing to redis", zap.String("session", session))
		unpublish := e.Bind(redis.NewPublisher(rdb, cfg.Redis.KeyPrefix, session, logger))
		defer unpublish()
	}

	if cfg.Metrics.Address != "" {
		srv := serveMetrics(cfg.Metrics.Address, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return selectLoop(sigCtx, os.Stdin, e, logger)
}

// selectLoop is the endpoint selection surface: one provider name or URL
// per line.
func selectLoop(ctx context.Context, in io.Reader, e *explorer.Explorer, logger *zap.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "quit", "exit":
				return nil
			}
			if err := e.Select(line); err != nil {
				logger.Warn("cannot select provider", zap.String("input", line), zap.Error(err))
			}
		}
	}
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("address", addr))
	return srv
}

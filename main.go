package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phsym/console-slog"
	"github.com/samber/do"

	"knowstore/internal/config"
	"knowstore/internal/server"
	"knowstore/internal/storage"
)

func main() {
	configPath := flag.String("config", "knowstore.yaml", "Path to the YAML config file")
	transport := flag.String("transport", "", "Transport mode: stdio or http (overrides config)")
	port := flag.String("port", "", "HTTP port (overrides config, only used with http transport)")
	dbPath := flag.String("db", "", "Path to the SQLite database file (overrides config)")
	flag.Parse()

	// Logs go to stderr so the stdio transport keeps stdout for the protocol.
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	di := do.New()
	defer di.Shutdown()

	do.ProvideValue(di, cfg)
	do.Provide(di, func(i *do.Injector) (*storage.Store, error) {
		return storage.Open(do.MustInvoke[*config.Config](i).DBPath)
	})
	do.Provide(di, func(i *do.Injector) (*mcp.Server, error) {
		return server.New(do.MustInvoke[*storage.Store](i)), nil
	})

	srv, err := do.Invoke[*mcp.Server](di)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cfg.Transport {
	case "stdio":
		slog.Info("knowstore MCP server starting", "transport", "stdio", "db", cfg.DBPath)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "http":
		addr := ":" + cfg.Port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		slog.Info("knowstore MCP server listening", "addr", addr, "db", cfg.DBPath)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

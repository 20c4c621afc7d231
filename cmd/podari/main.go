package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/erazemk/podari/internal/api"
	"github.com/erazemk/podari/internal/blob"
	"github.com/erazemk/podari/internal/db"
	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/store"
	"github.com/erazemk/podari/internal/workflow"
)

// config holds server settings. Environment variables provide the
// defaults; flags override them.
type config struct {
	DBPath    string `env:"PODARI_DB" envDefault:"podari.sqlite3"`
	Addr      string `env:"PODARI_ADDR" envDefault:":8080"`
	BlobDir   string `env:"PODARI_BLOB_DIR" envDefault:"blobs"`
	BlobURL   string `env:"PODARI_BLOB_URL" envDefault:"/files"`
	LogPath   string `env:"PODARI_LOG" envDefault:""`
	JWTSecret string `env:"PODARI_JWT_SECRET" envDefault:""`
}

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout,
// ERROR goes to stderr. If logPath is non-empty, all levels are also
// written to that file. Returns a cleanup function that closes the log
// file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: podari [command] [flags]

Commands:
  serve    run the HTTP server (default)
  init     create or migrate the database and exit
  repair   finish approvals that were interrupted partway and exit

Flags:
  -db <path>      SQLite database path (default: podari.sqlite3)
  -addr <addr>    listen address (default: :8080)
  -blobs <dir>    image storage directory (default: blobs)
  -log <path>     log file path (default: no file, stdout/stderr only)
  -h, -help       show this help and exit

Environment variables PODARI_DB, PODARI_ADDR, PODARI_BLOB_DIR,
PODARI_BLOB_URL, PODARI_LOG and PODARI_JWT_SECRET provide the flag
defaults. When no JWT secret is configured one is generated and kept in
the database.
`)
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("podari", flag.ExitOnError)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.BlobDir, "blobs", cfg.BlobDir, "image storage directory")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "log file path")
	fs.Usage = usage
	fs.Parse(args)

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	docs := docstore.NewSQLite(database)

	switch command {
	case "serve":
		serve(cfg, database, docs)
	case "init":
		// Migration already ran above; nothing more to do.
		slog.Info("database initialized", "path", cfg.DBPath)
	case "repair":
		repaired, err := workflow.RepairApprovals(context.Background(), docs)
		if err != nil {
			slog.Error("repair pass failed", "error", err)
			os.Exit(1)
		}
		slog.Info("repair pass finished", "repaired", repaired)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func serve(cfg config, database *sql.DB, docs docstore.Client) {
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		var err error
		jwtSecret, err = store.GetJWTSecret(context.Background(), database)
		if err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			os.Exit(1)
		}
	}

	blobs, err := blob.NewStore(cfg.BlobDir, cfg.BlobURL)
	if err != nil {
		slog.Error("failed to set up blob store", "error", err)
		os.Exit(1)
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, docs, jwtSecret, blobs))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/pageserve/internal/config"
	"github.com/mtlprog/pageserve/internal/database"
	"github.com/mtlprog/pageserve/internal/domain"
	"github.com/mtlprog/pageserve/internal/handler"
	"github.com/mtlprog/pageserve/internal/logger"
	"github.com/mtlprog/pageserve/internal/middleware"
	"github.com/mtlprog/pageserve/internal/repository"
	"github.com/mtlprog/pageserve/internal/watch"
)

func main() {
	// Values from .env must be in the environment before flags read EnvVars.
	loaded, envErr := config.LoadDotEnv()

	app := newApp(loaded, envErr)

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// serveFlags returns the flags of the serve command. The root command accepts
// them too since serve is its default action. Only the root copies read the
// environment, so a value given after "serve" is the only thing that can
// override a root flag or env var.
func serveFlags(env bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   config.DefaultHost,
			Usage:   "Interface to bind the HTTP listener to",
			EnvVars: envVars(env, "HOST"),
		},
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "HTTP server port",
			EnvVars: envVars(env, "PORT"),
		},
		&cli.StringFlag{
			Name:    "index",
			Value:   config.DefaultIndexFile,
			Usage:   "File served on GET /, resolved against the working directory",
			EnvVars: envVars(env, "INDEX_FILE"),
		},
		&cli.BoolFlag{
			Name:    "watch",
			Usage:   "Log changes to the index file",
			EnvVars: envVars(env, "WATCH"),
		},
	}
}

// databaseFlag is accepted by the root command and by every subcommand that
// touches the hit store.
func databaseFlag(env bool) cli.Flag {
	return &cli.StringFlag{
		Name:    "database-url",
		Aliases: []string{"d"},
		Value:   config.DefaultDatabaseURL,
		Usage:   "PostgreSQL database URL for hit recording (optional)",
		EnvVars: envVars(env, "DATABASE_URL"),
	}
}

// newApp builds the CLI. envFiles and envErr describe the .env loading done
// before the app was built; they are logged once the logger is configured.
func newApp(envFiles []string, envErr error) *cli.App {
	rootFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   logger.FormatJSON,
			Usage:   "Log format (json, text)",
			EnvVars: []string{"LOG_FORMAT"},
		},
		databaseFlag(true),
	}

	return &cli.App{
		Name:  "pageserve",
		Usage: "Serve index.html over HTTP",
		Flags: append(rootFlags, serveFlags(true)...),
		Before: func(c *cli.Context) error {
			logger.Setup(os.Stdout, logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			if envErr != nil {
				slog.Warn("failed to load env file", "error", envErr)
			}
			for _, path := range envFiles {
				slog.Debug("loaded env file", "path", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Flags:  append([]cli.Flag{databaseFlag(false)}, serveFlags(false)...),
				Action: runServe,
			},
			{
				Name:  "stats",
				Usage: "Print recorded hits per path and status",
				Flags: []cli.Flag{
					databaseFlag(false),
					&cli.DurationFlag{
						Name:  "since",
						Value: 24 * time.Hour,
						Usage: "How far back to aggregate hits",
					},
				},
				Action: runStats,
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := config.Addr(lookupString(c, "host"), lookupString(c, "port"))
	indexPath := lookupString(c, "index")
	if indexPath == "" {
		indexPath = config.DefaultIndexFile
	}

	var recorder middleware.HitRecorder
	if databaseURL := lookupString(c, "database-url"); databaseURL != "" {
		db, err := database.New(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db.Pool()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		recorder = repository.NewHitRepository(db.Pool())
	}

	h := handler.New(indexPath)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	access := middleware.NewAccessLog(recorder, middleware.DefaultQueueSize)
	defer access.Close()

	server := &http.Server{
		Handler:           access.Wrap(middleware.CORS(mux)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Bind before serving so an unavailable address fails startup right away.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	if lookupBool(c, "watch") {
		stopWatch, err := startWatch(ctx, indexPath)
		if err != nil {
			ln.Close()
			return err
		}
		defer stopWatch()
	}

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "server_addr", "http://"+ln.Addr().String(), "index", indexPath)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// startWatch logs changes to the index file until the returned stop func is called.
func startWatch(ctx context.Context, indexPath string) (func(), error) {
	w, err := watch.New(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to watch index file: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go w.Run(ctx,
		func(ev watch.Event) {
			slog.Info("index file changed", "path", ev.Path, "op", string(ev.Op))
		},
		func(err error) {
			slog.Warn("index file watcher error", "error", err)
		},
	)
	slog.Info("watching index file", "path", w.Path())

	return func() {
		cancel()
		w.Close()
	}, nil
}

func runStats(c *cli.Context) error {
	ctx := c.Context

	databaseURL := lookupString(c, "database-url")
	if databaseURL == "" {
		return fmt.Errorf("stats: %w: set --database-url or DATABASE_URL", domain.ErrStoreDisabled)
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	since := time.Now().Add(-c.Duration("since"))
	summary, err := repository.NewHitRepository(db.Pool()).Summary(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load hit summary: %w", err)
	}

	return printSummary(c.App.Writer, summary)
}

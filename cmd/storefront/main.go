package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/http/routes"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/validate"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Server-rendered shop for perfumes, body and hair care",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		return setupLogging(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema, the demo catalog and the ADMIN_EMAIL account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := repos.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.AdminEmail == "" {
			applog.L().Info().Str("action", "seed.admin.skip").Msg("ADMIN_EMAIL not set")
			return nil
		}
		return seedAdmin(ctx, db)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete expired sessions from the SQL session store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repos.OpenDB(cmd.Context(), cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := session.NewSQLStore(db).PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		applog.L().Info().Str("action", "sessions.purge").Int64("deleted", n).Send()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, purgeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) error {
	var w io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	applog.Setup(w, applog.ParseLevel(cfg.LogLevel), strings.EqualFold(cfg.LogFormat, "console"))
	return nil
}

func seedAdmin(ctx context.Context, db *sqlx.DB) error {
	if !validate.Password(cfg.AdminPassword) {
		return errors.New("ADMIN_PASSWORD must be 8-20 characters with upper and lower case letters, a digit and a symbol")
	}
	auth := services.NewAuthService(repos.NewUserRepo(db), cfg.BcryptCost, nil)
	hash, err := auth.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := repos.SeedAdmin(ctx, db, cfg.AdminName, cfg.AdminEmail, hash); err != nil {
		return err
	}
	applog.L().Info().Str("category", "audit").Str("action", "seed.admin").Str("email", cfg.AdminEmail).Send()
	return nil
}

func serve(ctx context.Context) error {
	log := applog.L()

	db, err := repos.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.AdminEmail != "" {
		if err := seedAdmin(ctx, db); err != nil {
			return err
		}
	}

	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		store = session.NewRedisStore(client)
	default:
		sqlStore := session.NewSQLStore(db)
		go purgeLoop(ctx, sqlStore)
		store = sqlStore
	}

	deps := handlers.NewDeps(db, cfg, store)
	app := routes.New(cfg, deps, routes.Views(cfg.TemplatesDir, !cfg.IsProd()))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("action", "server.start").Str("port", cfg.Port).
			Str("env", cfg.Env).Str("db", cfg.DBDriver).Str("sessions", cfg.SessionBackend).Send()
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Str("action", "server.shutdown").Send()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// purgeLoop drops expired SQL sessions hourly until ctx ends.
func purgeLoop(ctx context.Context, store *session.SQLStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				applog.L().Error().Err(err).Str("action", "sessions.purge.fail").Send()
				continue
			}
			if n > 0 {
				applog.L().Debug().Str("action", "sessions.purge").Int64("deleted", n).Send()
			}
		}
	}
}

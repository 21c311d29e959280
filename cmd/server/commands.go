package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tablekeep/internal/app"
	"tablekeep/internal/config"
	internaldb "tablekeep/internal/db"
	"tablekeep/internal/middleware"
)

type rootOptions struct {
	envFile string
	dbPath  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tablekeep",
		Short:         "Private dining reservation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bindFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

func (o *rootOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
}

// load reads configuration and builds the process logger.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", o.envFile, err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

// openDB opens both pools and applies pending migrations.
func openDB(cfg *config.Config) (writeDB, readDB *sql.DB, err error) {
	writeDB, readDB, err = internaldb.OpenSQLitePair(cfg.DBPath, cfg.ReadPoolSize)
	if err != nil {
		return nil, nil, err
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return writeDB, readDB, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			writeDB, readDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer writeDB.Close()
			defer readDB.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			a, err := app.New(ctx, app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           a.Handler(ctx),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       120 * time.Second,
			}
			go func() {
				<-ctx.Done()
				logger.Info("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "env", cfg.Env,
				"try", fmt.Sprintf("curl -H 'Authorization: Bearer <token>' http://%s/v1/reservations", curlHostForListenAddr(cfg.ListenAddr)))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			writeDB, readDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer writeDB.Close()
			defer readDB.Close()

			v, err := internaldb.MigrationVersion(writeDB)
			if err != nil {
				return err
			}
			logger.Info("schema up to date", "version", v)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var seed app.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin actor and demo dining rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			writeDB, readDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer writeDB.Close()
			defer readDB.Close()

			admin, err := app.Seed(cmd.Context(), app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger}, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin actor %d (%s)\n", admin.ID, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed.AdminEmail, "admin-email", "", "email of the admin actor")
	cmd.Flags().StringVar(&seed.AdminName, "admin-name", "", "display name of the admin actor")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var ttl time.Duration
	var actorID int64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			if actorID <= 0 {
				return errors.New("--actor must be a positive actor id")
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.TokenTTL
			}
			tok, err := middleware.MintToken(cfg.JWTSecret, actorID, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&actorID, "actor", 0, "actor id to embed as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	return cmd
}

// curlHostForListenAddr turns a listen address into a host:port usable in
// example commands.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

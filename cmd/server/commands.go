package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/database"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/server"
	"gorm.io/gorm"
)

var version = "dev"

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the API server; migrations run first unless --skip-migrate is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run database migrations on start")

	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, log *logger.Logger, db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				log.Infow("Migrations applied", "driver", cfg.Database.Driver)
				return nil
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Mini Trello API " + version)
		},
	}
}

func runServer(ctx context.Context, skipMigrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withDatabase(func(cfg *config.Config, log *logger.Logger, db *gorm.DB) error {
		if !skipMigrate {
			if err := database.Migrate(db); err != nil {
				return err
			}
		}

		srv, err := server.New(cfg, log, db)
		if err != nil {
			return fmt.Errorf("failed to build server: %w", err)
		}
		return srv.Run(ctx)
	})
}

// withDatabase loads configuration, opens the logger and database, and closes both after fn
func withDatabase(fn func(cfg *config.Config, log *logger.Logger, db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Close()

	db, err := database.Open(cfg.Database, log, cfg.Logger.Level)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(cfg, log, db)
}

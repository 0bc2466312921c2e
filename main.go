package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blog/internal/app"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/logger"
	"blog/internal/services"
	"blog/pkg/rabbitmq"
)

const configFlag = "config"

func newConfigFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: "",
			Usage: "Optional config file (yaml, json, toml or env); environment variables take precedence",
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := newConfigFlags()
	withConfig := func(run func(cfg *config.Config) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), flags[configFlag].GetString())
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cfg.LogFormat)
			return run(cfg)
		}
	}

	rootCmd := &cobra.Command{
		Use:          "blog",
		Short:        "Blog backend: user accounts and blog posts over HTTP",
		SilenceUsage: true,
		RunE:         withConfig(serve), // serve is the default action
	}
	cobraflags.RegisterMap(rootCmd, flags)
	// Shared with every subcommand, so --config may come before or after the command name.
	if f := rootCmd.Flags().Lookup(configFlag); f != nil {
		rootCmd.PersistentFlags().AddFlag(f)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and start the HTTP server",
			RunE:  withConfig(serve),
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the user, post and session tables and exit",
			RunE:  withConfig(migrate),
		},
	)
	return rootCmd
}

func migrate(cfg *config.Config) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	slog.Info("Database migrated", "driver", cfg.DatabaseDriver)
	return nil
}

func serve(cfg *config.Config) error {
	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			slog.Warn("RabbitMQ unavailable; post events disabled", "error", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumePostEvents(rabbitmq.LogPostEvent); err != nil {
				slog.Warn("Failed to start post event consumer", "error", err)
			}
		}
	}

	application := app.New(cfg, db, app.Options{Publisher: publisher, AccessLog: true})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	application.SessionStorage.StartGC(ctx, cfg.SessionGCInterval)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", cfg.AppPort)
		listenErr <- application.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	slog.Info("Shutting down server...")
	if err := application.Fiber.Shutdown(); err != nil {
		slog.Error("Error during Fiber shutdown", "error", err)
	}
	slog.Info("Server gracefully stopped")
	return nil
}

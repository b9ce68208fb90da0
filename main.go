package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/app"
	foundation "github.com/km-arc/go-scoped/framework/app"
	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/logging"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

func main() {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:           "todos",
		Short:         "Todo list API on a scoped container",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	rootCmd.AddCommand(
		serveCommand(&envFiles),
		migrateCommand(&envFiles),
		routesCommand(&envFiles),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "todos:", err)
		os.Exit(1)
	}
}

func serveCommand(envFiles *[]string) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(*envFiles, func(cfg *config.Config) {
				if port != "" {
					cfg.App.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer a.Logger().Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides APP_PORT)")
	return cmd
}

func migrateCommand(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema of every enabled module",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(*envFiles, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.Logger().Info("schema up to date", zap.String("database", container.MustGet[string](a, providers.DBPathKey)))
			return nil
		},
	}
}

func routesCommand(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the registered HTTP routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(*envFiles, nil)
			if err != nil {
				return err
			}
			if _, err := a.Handler(); err != nil {
				return err
			}
			router, err := container.Get[*routing.Router](a, providers.RouterKey)
			if err != nil {
				return err
			}
			for _, route := range router.Routes() {
				fmt.Fprintln(cmd.OutOrStdout(), route)
			}
			return nil
		},
	}
}

// bootstrap loads config, builds the logger and boots the application.
func bootstrap(envFiles []string, override func(*config.Config)) (*foundation.Application, error) {
	cfg := config.Load(envFiles...)
	if override != nil {
		override(cfg)
	}

	logger, err := logging.New(cfg.Log, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return app.Bootstrap(cfg, logger)
}


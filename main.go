package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewear/internal/app"
	"rewear/internal/config"
	"rewear/internal/logger"
	"rewear/internal/repositories"
	"rewear/internal/seed"
	"rewear/internal/services"
	"rewear/pkg/storefront"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rewear",
		Short:        "Revive & Rewear marketplace backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), trackCmd())
	return root
}

// loadConfig reads the configuration and sets up the global logger.
func loadConfig() (*config.Manager, error) {
	manager, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg := manager.Get()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	return manager, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the order tracker and the event consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			manager.OnChange(func(cfg *config.Config) {
				logger.SetLevel(cfg.LogLevel)
				logger.L().Info("configuration reloaded", zap.String("log_level", cfg.LogLevel))
			})
			manager.Watch(func(err error) {
				logger.L().Warn("configuration reload rejected", zap.Error(err))
			})

			a, err := app.New(manager.Get())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg := manager.Get()
			db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer repositories.Close(db)

			if err := repositories.AutoMigrate(db); err != nil {
				return err
			}
			logger.L().Info("schema migrated", zap.String("driver", cfg.DBDriver))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, users and products from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg := manager.Get()
			if file == "" {
				file = cfg.SeedFile
			}
			data, err := seed.Load(file)
			if err != nil {
				return err
			}

			db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer repositories.Close(db)
			if err := repositories.AutoMigrate(db); err != nil {
				return err
			}

			store := repositories.NewGORMStore(db)
			auth := services.NewAuthService(store.Users(), nil, nil, cfg.JWTSecret, cfg.TokenTTL)
			res, err := seed.Apply(cmd.Context(), store, auth, data)
			if err != nil {
				return err
			}
			logger.L().Info("seed applied",
				zap.String("file", file),
				zap.Int("categories", res.Categories),
				zap.Int("users", res.Users),
				zap.Int("products", res.Products),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to SEED_FILE)")
	return cmd
}

func trackCmd() *cobra.Command {
	var (
		baseURL  string
		token    string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "track ORDER_ID",
		Short: "Follow an order's tracking timeline through the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("REWEAR_TOKEN")
			}
			client := storefront.NewClient(baseURL, nil)
			client.SetToken(token)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tracker := client.Track(ctx, args[0], interval)
			defer tracker.Stop()

			out := cmd.OutOrStdout()
			seen := 0
			for update := range tracker.Updates() {
				if update.Err != nil {
					fmt.Fprintf(out, "poll failed: %v\n", update.Err)
					continue
				}
				history := update.Order.TrackingHistory
				for ; seen < len(history); seen++ {
					ev := history[seen]
					fmt.Fprintf(out, "%s  %-24s %s\n", ev.Timestamp.Local().Format(time.DateTime), ev.Status, ev.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "api", "http://localhost:8080/api/v1", "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (defaults to REWEAR_TOKEN)")
	cmd.Flags().DurationVar(&interval, "interval", storefront.DefaultPollInterval, "poll interval")
	return cmd
}

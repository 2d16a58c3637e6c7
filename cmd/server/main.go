package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snowflake_data/internal/config"
	"snowflake_data/internal/database"
	"snowflake_data/internal/export"
	"snowflake_data/internal/metrics"
	"snowflake_data/internal/server"
	"snowflake_data/internal/service"
	"snowflake_data/internal/storage"
	"snowflake_data/internal/warehouse"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:          "snowflake-data",
		Short:        "HTTP API over analytical warehouse queries",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the records table",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate()
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	app := fx.New(
		fx.NopLogger,
		// Поставщики зависимостей
		fx.Provide(
			provideConfig,
			provideLogger,
			provideWarehouse,
			provideDatabase,
			storage.NewStorageFromConfig,
			provideDataService,
			service.NewRecordServiceFromDB,
			provideExportService,
			server.NewServer,
		),

		// Хуки жизненного цикла
		fx.Invoke(registerLifecycleHooks),
	)

	return runWithGracefulShutdown(app)
}

func migrate() error {
	cfg, err := provideConfig()
	if err != nil {
		return err
	}
	logger := provideLogger(cfg)

	db, err := provideDatabase(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		return err
	}

	if err := database.AutoMigrate(db, logger); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		return err
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// provideConfig загружает и предоставляет конфигурацию приложения
func provideConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

// provideLogger создает и настраивает логгер на основе конфигурации
func provideLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Invalid logging level, falling back to info")
	}
	logger.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	logger.WithField("config", cfg.String()).Info("Starting snowflake data service")
	return logger
}

func provideWarehouse(cfg config.Config, logger *logrus.Logger) (*warehouse.Client, error) {
	if cfg.Metrics.Enabled {
		metrics.Register(nil)
	}
	return warehouse.NewClient(cfg, logger)
}

func provideDatabase(cfg config.Config) (*gorm.DB, error) {
	return database.NewDatabase(database.FromAppConfig(cfg))
}

func provideDataService(client *warehouse.Client, logger *logrus.Logger) *service.DataService {
	return service.NewDataService(client, logger)
}

func provideExportService(cfg config.Config, data *service.DataService, store storage.Storage, logger *logrus.Logger) *service.ExportService {
	return service.NewExportService(data, export.NewXLSXWriter(logger), store, cfg.Export.Prefix, logger)
}

// registerLifecycleHooks настраивает хуки жизненного цикла приложения
func registerLifecycleHooks(
	srv *server.Server,
	db *gorm.DB,
	cfg config.Config,
	logger *logrus.Logger,
	lc fx.Lifecycle,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Таблица записей создается при старте
			if err := database.AutoMigrate(db, logger); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("HTTP server stopped unexpectedly")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

// runWithGracefulShutdown обрабатывает жизненный цикл приложения с обработкой сигналов
func runWithGracefulShutdown(app *fx.App) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		logrus.WithError(err).Error("Failed to start application")
		return err
	}

	<-quit
	logrus.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		logrus.WithError(err).Error("Failed to stop application cleanly")
		return err
	}

	logrus.Info("Service stopped")
	return nil
}

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yigit/coursewatch/internal/app/migrations"
	"github.com/yigit/coursewatch/internal/app/repositories"
	"github.com/yigit/coursewatch/internal/app/services"
	"github.com/yigit/coursewatch/internal/config"
	"github.com/yigit/coursewatch/internal/db"
	"github.com/yigit/coursewatch/internal/feed"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
	"github.com/yigit/coursewatch/internal/pkg/logger"
	"github.com/yigit/coursewatch/internal/pkg/notify"
)

const migrationsDir = "migrations"

// App wires configuration, the store, and the services together for the CLI.
type App struct {
	Config      *config.Config
	DB          *db.PostgresDB
	Repos       *repositories.Repositories
	Ingest      *services.IngestService
	Diff        *services.DiffService
	Maintenance *services.MaintenanceService
	Export      *services.ExportService
}

// New loads configuration, connects to the store, applies schema migrations,
// and builds the service graph.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format != "json",
	})

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.NewMigrator(database.Pool, migrationsDir).Run(context.Background()); err != nil {
		database.Close()
		return nil, err
	}

	repos := repositories.NewRepositories(database.Pool)
	ingest := services.NewIngestService(database, repos.Course, repos.Section, repos.Snapshot)

	return &App{
		Config:      cfg,
		DB:          database,
		Repos:       repos,
		Ingest:      ingest,
		Diff:        services.NewDiffService(repos.Snapshot),
		Maintenance: services.NewMaintenanceService(repos.Snapshot, repos.ReportLog, repos.Course, repos.Section, ingest),
		Export:      services.NewExportService(repos.Snapshot, repos.ReportLog, cfg),
	}, nil
}

// Close releases the store connection pool.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Notifier returns the delivery channel for reports: Telegram by default,
// the console when suppressed or unconfigured.
func (a *App) Notifier(noTelegram bool) notify.Notifier {
	if noTelegram || a.Config.Telegram.BotToken == "" {
		return notify.NewConsoleNotifier(os.Stdout)
	}
	return notify.NewTelegramNotifier(a.Config.Telegram.BotToken, a.Config.Telegram.ChatID, a.Config.Telegram.DryRun)
}

// Reporter builds a ReportService bound to the chosen notifier.
func (a *App) Reporter(noTelegram bool) *services.ReportService {
	return services.NewReportService(a.Repos.Snapshot, a.Repos.ReportLog, a.Notifier(noTelegram), a.Config.Directories.Reports)
}

// Fetcher returns the feed source: a local file when path is set, otherwise
// the configured HTTP download.
func (a *App) Fetcher(filePath string) feed.Fetcher {
	if filePath != "" {
		return &feed.FileFetcher{Path: filePath}
	}
	timeout := helpers.ParseDuration(a.Config.Feed.Timeout, 60*time.Second)
	return feed.NewDownloader(a.Config.Feed.URL, a.Config.Feed.DownloadDir, timeout)
}

// Poll runs one ingestion cycle: fetch the feed and store a snapshot stamped
// with the current time and the active semester.
func (a *App) Poll(ctx context.Context, fetcher feed.Fetcher) (int64, error) {
	observations, err := fetcher.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)
	return a.Ingest.Ingest(ctx, observations, a.Config.Active(), timestamp)
}

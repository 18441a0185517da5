package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventmis/internal/config"
	"eventmis/pkg/logger"
	"eventmis/pkg/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and returns a GORM handle.
//
// Postgres goes through pgx stdlib via utils.OpenPostgres so pool limits and
// the startup ping stay in one place. SQLite is meant for local runs and tests.
func Open(ctx context.Context, cfg config.Config, l *slog.Logger) (*gorm.DB, error) {
	switch cfg.DB.Driver {
	case "postgres":
		target := utils.PostgresTarget{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Name:     cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
			AppName:  "eventmis-api",
		}
		sqlDB, err := utils.OpenPostgres(ctx, target.DSN(), utils.PostgresPool{})
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(l))
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("gorm open: %w", err)
		}
		return db, nil
	case "sqlite":
		return OpenSQLite(cfg.DB.Path, l)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}

// OpenSQLite opens a SQLite database with a single connection.
// One connection keeps ":memory:" and shared-cache databases consistent across
// transactions and serialises writers.
func OpenSQLite(dsn string, l *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func gormConfig(l *slog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.NewGormLogger(l, gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Ping checks connectivity for readiness probes.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return utils.HealthCheck(ctx, sqlDB, 2*time.Second)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the tables for the given models.
// Models are passed in by the caller so this package stays free of domain imports.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the store selected by cfg.StoreDriver. SQL stores have
// their tables synced before returning.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	case config.DriverSQLite:
		return openGORM(sqlite.Open(cfg.SQLitePath), log)
	case config.DriverPostgres:
		return openGORM(postgres.Open(cfg.DatabaseDSN), log)
	case config.DriverMongo:
		store, err := repositories.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openGORM(dialector gorm.Dialector, log logrus.FieldLogger) (*repositories.GORMStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewGORMLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := repositories.NewGORMStore(db)
	if err := store.AutoMigrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// NewGORMLogger routes GORM's logs through log. Only slow queries and
// errors are reported. Record-not-found is expected and stays silent.
func NewGORMLogger(log logrus.FieldLogger) gormlogger.Interface {
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

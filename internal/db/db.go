package db

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kassemshdy/aspire-library/internal/config"
	"github.com/kassemshdy/aspire-library/internal/models"
)

// Models in foreign key order. Reset walks it backwards.
var allModels = []any{
	&models.User{},
	&models.Book{},
	&models.Loan{},
	&models.AuditLog{},
}

// NewDB opens and migrates the database, exiting the process on failure.
func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	return db
}

// Open connects to Postgres and sizes the pool. It does not migrate.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(allModels...), "auto migrate")
}

// Reset removes every row, children first. Schema is kept.
func Reset(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(allModels) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Delete(allModels[i]).Error; err != nil {
				return errors.Wrapf(err, "clear %T", allModels[i])
			}
		}
		return nil
	})
}

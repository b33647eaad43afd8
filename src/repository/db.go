package repository

import (
	"fmt"
	"time"

	cfg "eventserv/src/configuration"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the postgres connection with a bounded retry loop so the
// service survives the database coming up after it in a compose stack.
func Connect(config *cfg.Properties) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 0; i < config.Database.MaxRetries; i++ {
		db, err = gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			logrus.Info("connected to database")
			return db, nil
		}
		logrus.WithError(err).Warnf("database connect attempt %d/%d failed, retrying in %s",
			i+1, config.Database.MaxRetries, config.Database.RetryInterval)
		time.Sleep(config.Database.RetryInterval)
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w",
		config.Database.MaxRetries, err)
}

// Migrate syncs the schema for every model the service persists.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&City{},
		&Prefecture{},
		&Category{},
		&Event{},
		&Comment{},
		&Report{},
		&Image{},
	)
}

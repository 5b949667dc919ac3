package database

import (
	"context"
	"log"
	"time"

	"innkeeper/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLDB is the global GORM handle used by the MySQL repositories.
var SQLDB *gorm.DB

// InitSQL opens the MySQL connection and migrates the given models.
func InitSQL(models ...any) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if !config.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(config.AppConfig.MySQLDSN), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
		// Surfaces gorm.ErrDuplicatedKey for unique index violations.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("failed to migrate MySQL schema: %v", err)
		}
	}
	SQLDB = db
	log.Println("Connected to MySQL successfully!")
}

// PingSQL checks the underlying MySQL connection pool.
func PingSQL(ctx context.Context) error {
	sqlDB, err := SQLDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zapWriter feeds gorm's logger into zap.
type zapWriter struct{ s *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...any) { w.s.Infof(format, args...) }

func gormConfig(log *zap.Logger, level logger.LogLevel) *gorm.Config {
	if log == nil {
		log = zap.NewNop()
	}
	return &gorm.Config{
		// duplicate keys surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		// OpenGormWithDialector pings once after pool setup
		DisableAutomaticPing: true,
		Logger: logger.New(zapWriter{s: log.Named("gorm").Sugar()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// ParseLogLevel maps LOG_LEVEL to gorm's level; SQL is traced only at debug.
func ParseLogLevel(s string) logger.LogLevel {
	switch s {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	}
	return logger.Warn
}

func OpenGorm(dsn string, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), log, level)
}

func OpenGormWithDialector(dial gorm.Dialector, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dial, gormConfig(log, level))
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if log != nil {
		log.Info("gorm: connected")
	}
	return db, nil
}

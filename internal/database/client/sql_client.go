package client

import (
	"fmt"
	"promptgate/config"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLClient 以 gorm 連接 postgres 或 sqlite
type SQLClient struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSQLClient(logger *zap.Logger, config *config.Configuration) (*SQLClient, func(), error) {
	dialector, err := sqlDialector(config.SQL.Driver, config.SQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		logger.Error("failed to connect to SQL database", zap.String("driver", config.SQL.Driver), zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to SQL database", zap.String("driver", config.SQL.Driver))
	sqlClient := &SQLClient{db: db, logger: logger}

	cleanup := func() {
		logger.Info("closing the SQL resources")
		if err := sqlClient.Close(); err != nil {
			logger.Error("failed to close SQL client", zap.Error(err))
		}
	}
	return sqlClient, cleanup, nil
}

func sqlDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
}

// NewSQLClientFromDB 測試時直接包裝既有連線
func NewSQLClientFromDB(db *gorm.DB, logger *zap.Logger) *SQLClient {
	return &SQLClient{db: db, logger: logger}
}

func (c *SQLClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *SQLClient) DB() *gorm.DB {
	return c.db
}

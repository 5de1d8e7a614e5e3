package persistence

import (
	"context"
	"fmt"

	"storeassist/config"
	"storeassist/domain/model"
	"storeassist/pkg/retry"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to MySQL with the configured pool settings. SQL logging
// is routed through the supplied GORM logger (the zap adapter in
// production, silent in tests). The first ping is retried with backoff
// so the service survives the database coming up after it.
func Open(ctx context.Context, cfg *config.DatabaseConfig, gl gormlogger.Interface) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = retry.Do(ctx, retry.DefaultConfig, func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.WishlistEntry{},
		&model.FittingRoomRequest{},
		&model.FittingRoom{},
		&model.Notification{},
		&model.OutboundEvent{},
	)
}

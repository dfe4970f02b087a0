package database

import (
	"fmt"
	"time"

	"fitshop_backend/internal/config"
	"fitshop_backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ActiveOrderIndex is the partial unique index allowing a single NEW order per user.
const ActiveOrderIndex = "ux_orders_user_active"

// Open connects to the configured database. TranslateError is enabled so
// unique violations surface as gorm.ErrDuplicatedKey on every dialect.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.Server.Env == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// one writer for sqlite; in-memory databases are per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// AutoMigrate creates the schema and the indexes gorm tags cannot express.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Discount{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.PaymentTransaction{},
		&models.Picture{},
		&models.Video{},
		&models.MediaAsset{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// MySQL has no partial indexes; there the per-user cart lock is the only guard.
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s ON orders (user_id) WHERE status = '%s'",
			ActiveOrderIndex, models.OrderStatusNew,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", ActiveOrderIndex, err)
		}
	}

	return nil
}

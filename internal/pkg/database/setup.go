package database

import (
	"fmt"
	"log"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the connection opened by SetupDatabase
func GetDB() *gorm.DB {
	return DB
}

// Driver returns the configured relational driver name
func Driver() string {
	return env.GetEnv("DB_DRIVER", "postgres")
}

// DSN builds the data source name for the configured driver. DATABASE_URL wins when set.
func DSN(driver string) string {
	if url := env.GetEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	switch driver {
	case "mysql":
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=UTC"
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_NAME", ""),
			env.GetEnv("DB_PORT", "5432"),
			env.GetEnv("DB_SSLMODE", "disable"),
		)
	}
}

// Dialector returns the gorm dialector for driver
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		}), nil
	case "postgres":
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Connect opens the database, retrying while it comes up
func Connect(driver, dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retry in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

// AutoMigrate creates or updates the drafts and reports tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Draft{},
		&models.Report{},
	)
}

// SetupDatabase connects with the environment configuration. It panics when
// the database stays unreachable.
func SetupDatabase() {
	driver := Driver()
	db, err := Connect(driver, DSN(driver))
	if err != nil {
		panic(err)
	}
	if env.GetBool("DB_AUTO_MIGRATE", true) {
		if err := AutoMigrate(db); err != nil {
			panic(err)
		}
	}
	DB = db
}

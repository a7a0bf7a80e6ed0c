package database

import (
	"log"
	"strings"

	"inventory-backend/internal/config"
	"inventory-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the database and runs AutoMigrate. A DATABASE_URL that looks
// like a Postgres DSN selects the postgres driver, anything else is treated
// as a SQLite path (local development, tests).
func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(openDialector(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("database connected, migration complete")
}

func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CabinetWarehouse{},
		&models.User{},
		&models.Employee{},
		&models.Product{},
		&models.ProductStock{},
		&models.WithdrawOrder{},
		&models.WithdrawOrderDetail{},
		&models.AuditLog{},
	)
}

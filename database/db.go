package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/baniakuntest4-alt/arhanud/models"
)

var DB *gorm.DB

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Connect() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using process environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		envOr("DB_HOST", "localhost"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		envOr("DB_PORT", "5432"),
		envOr("DB_SSLMODE", "disable"))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
}

func AutoMigrate() {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Personnel{},
		&models.RankHistory{},
		&models.PositionHistory{},
		&models.Education{},
		&models.FamilyMember{},
		&models.Request{},
		&models.AuditLog{},
		&models.IdempotencyKey{},
	); err != nil {
		logrus.WithError(err).Fatal("automigrate failed")
	}
}

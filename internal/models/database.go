package models

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codexx/academy/backend/internal/config"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&Workspace{},
		&User{},
		&Project{},
		&Skill{},
		&Client{},
		&Message{},
		&Service{},
		&VisitorLog{},
		&NotificationSetting{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the initial admin account if no users exist.
// The admin never gets a public portfolio page.
func SeedDefaultData() error {
	var userCount int64
	DB.Model(&User{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Username:           "admin",
		Email:              "admin@localhost",
		Password:           string(hash),
		Role:               "admin",
		IsVerified:         true,
		MustChangePassword: password == "changeme",
	}
	return DB.Create(&admin).Error
}

// pkg/db/repository.go
package db

import (
	"errors"
	"strconv"

	"github.com/avezina/flashdeck/pkg/config"
	"github.com/avezina/flashdeck/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Export DB variable
var DB *gorm.DB

// ErrNotFound is returned by store lookups when the requested row does not
// exist or is not visible to the given user.
var ErrNotFound = errors.New("db: not found")

func InitDB(cfg config.DatabaseConfig) error {
	var err error
	dsn := "host=" + cfg.Host +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.DBName +
		" port=" + strconv.Itoa(cfg.Port) +
		" sslmode=" + cfg.SSLMode
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	if err := DB.AutoMigrate(&CardSet{}, &Card{}, &StudySessionRow{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

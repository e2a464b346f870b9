package config

import (
	"encoding/json"
	"os"

	"github.com/avezina/flashdeck/pkg/logger"
)

const (
	DefaultNewCardsPerDay = 20
	DefaultReviewsPerDay  = 100
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Redis     RedisConfig     `json:"redis"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

// SchedulerConfig holds the per-user daily caps. Per-session batch ceilings
// and the session retention window are fixed in the scheduler package.
type SchedulerConfig struct {
	NewCardsPerDay int `json:"new_cards_per_day"`
	ReviewsPerDay  int `json:"reviews_per_day"`
}

// RedisConfig is optional. When Addr is empty the scheduler keeps daily
// progress in process memory.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

var AppConfig Config

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}
	applySchedulerDefaults(&AppConfig.Scheduler)

	return nil
}

func applySchedulerDefaults(cfg *SchedulerConfig) {
	if cfg.NewCardsPerDay <= 0 {
		cfg.NewCardsPerDay = DefaultNewCardsPerDay
	}
	if cfg.ReviewsPerDay <= 0 {
		cfg.ReviewsPerDay = DefaultReviewsPerDay
	}
}

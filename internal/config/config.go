// internal/config/config.go
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultRewardPercent = 10.0

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN собирает строку подключения к PostgreSQL
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Logger struct {
	Level string `yaml:"level"`
	Sink  string `yaml:"sink"`
}

type Telegram struct {
	Token         string  `yaml:"token"`
	AdminIDs      []int64 `yaml:"admin_ids"`
	SupportHandle string  `yaml:"support_handle"`
}

type Referral struct {
	RewardPercent float64 `yaml:"reward_percent"`
}

type AppConfig struct {
	Logger   Logger   `yaml:"log"`
	Telegram Telegram `yaml:"telegram"`
	Database Database `yaml:"database"`
	Referral Referral `yaml:"referral"`
}

// NewConfig читает конфигурацию из YAML-файла.
// Секреты можно переопределить переменными окружения
// (в том числе из .env): TELEGRAM_BOT_TOKEN, DB_PASSWORD.
func NewConfig(path string) (*AppConfig, error) {
	// .env не обязателен - в проде переменные приходят из окружения
	_ = godotenv.Load()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var appConfig AppConfig
	if err := yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if token, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
		appConfig.Telegram.Token = token
	}
	if password, ok := os.LookupEnv("DB_PASSWORD"); ok {
		appConfig.Database.Password = password
	}

	if appConfig.Referral.RewardPercent <= 0 {
		appConfig.Referral.RewardPercent = defaultRewardPercent
	}

	return &appConfig, nil
}

// IsAdmin проверяет, входит ли пользователь в список администраторов
func (c *AppConfig) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

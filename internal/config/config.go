package config

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries the environment of a running server. Values come from the
// process environment, optionally seeded from a .env file.
type Config struct {
	DBType      string // "postgres" or "sqlite"
	DBPath      string // sqlite file path
	PostgresDSN string
	RedisAddr   string // empty disables the redis-backed sinks
	Compression string // nop, gzip, brotli or lz4
	HTTPPort    string
}

func LoadConfig() *Config {
	cnf := &Config{
		DBType:      getEnv("DB_TYPE", "sqlite"),
		DBPath:      getEnv("DB_PATH", ".db/sopflow.db"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		Compression: getEnv("COMPRESSION", "gzip"),
		HTTPPort:    getEnv("HTTP_PORT", "4040"),
	}

	cnf.PostgresDSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_USER", "sopflow"),
		getEnv("POSTGRES_PASSWORD", "sopflow"),
		getEnv("POSTGRES_DB", "sopflow"),
	)

	return cnf
}

// GetDb opens the configured database. The duplicate-key translation is
// required: the store maps translated errors onto the working-copy
// uniqueness conflict.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cnf.DBType {
	case "postgres":
		dialector = postgres.Open(cnf.PostgresDSN)
	default:
		if err := os.MkdirAll(".db", os.ModePerm); err != nil {
			logrus.Fatalf("error creating sqlite directory: %v", err)
		}
		dialector = sqlite.Open(cnf.DBPath + "?_busy_timeout=10000")
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("error connecting to database: %v", err)
	}

	return db
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

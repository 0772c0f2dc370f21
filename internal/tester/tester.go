package tester

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sopworks/sopflow/internal/model"
)

// one directory per test binary, so packages under test never share a db file
var testPath = filepath.Join(os.TempDir(), fmt.Sprintf("sopflow-test-%d", os.Getpid()))

var (
	db *gorm.DB
)

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(filepath.Join(testPath, "db"), os.ModePerm)
	if err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(filepath.Join(testPath, "db", "sopflow.db")+"?_busy_timeout=10000"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	// a single connection serializes concurrent sqlite writers in tests
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	err := os.RemoveAll(testPath)
	if err != nil {
		panic(err)
	}
}

// Redis spins up an in-process redis and returns a connected client. The
// caller owns closing the returned miniredis.
func Redis() (*miniredis.Miniredis, *redis.Client) {
	m, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	return m, redis.NewClient(&redis.Options{Addr: m.Addr()})
}

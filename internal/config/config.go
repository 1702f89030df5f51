package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	once      sync.Once
	loadedEnv string
)

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, once per process. Variables already set in the
// environment win. It returns the file that was loaded, or "" if none.
func LoadEnv() string {
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			return
		}
		loadedEnv = envFile
	})
	return loadedEnv
}

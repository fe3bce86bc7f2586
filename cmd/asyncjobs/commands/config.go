package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/xraph/asyncjobs"
)

// LoadConfig reads configuration from the environment, loading envFile
// first when it exists. A missing file is not an error.
func LoadConfig(envFile string) (asyncjobs.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				return asyncjobs.Config{}, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	def := asyncjobs.DefaultConfig()
	return asyncjobs.Config{
		IDPrefix:  getEnv("ASYNCJOBS_ID_PREFIX", def.IDPrefix),
		LogLevel:  getEnv("ASYNCJOBS_LOG_LEVEL", def.LogLevel),
		LogFormat: getEnv("ASYNCJOBS_LOG_FORMAT", def.LogFormat),
		Codec:     getEnv("ASYNCJOBS_CODEC", def.Codec),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

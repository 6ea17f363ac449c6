package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Addr        string
	AdminToken  string
	CORSOrigins []string
}

type RedisConfig struct {
	URL      string
	Password string
}

type Config struct {
	Server      ServerConfig
	DatabaseURL string
	Redis       RedisConfig
}

// Load reads configuration from the environment, with a .env file as an
// optional local override.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			AdminToken:  getEnv("ADMIN_TOKEN", ""),
			CORSOrigins: splitEnv("CORS_ORIGINS", "*"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

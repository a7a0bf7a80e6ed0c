package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string
	RedisAddr   string // empty disables the stats cache
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.CORSOrigins == "http://localhost:3000" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value, set your own domains for production.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

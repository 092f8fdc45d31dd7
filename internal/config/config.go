// Package config loads server configuration from the environment.
package config

import "os"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port         string
	JWTSecret    string
	ReplayDir    string
	RatingsPath  string
	MatchesPath  string
	MaxTurns     int
	CORSOrigin   string
	RateLimitRPS float64
	RateLimitBurst int

	// Optional backing stores. Empty means use the file-based default.
	RedisURL    string
	DatabaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           envOrDefault("PORT", "8420"),
		JWTSecret:      envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		ReplayDir:      envOrDefault("REPLAY_DIR", "replays"),
		RatingsPath:    envOrDefault("RATINGS_PATH", "data/rankings.json"),
		MatchesPath:    envOrDefault("MATCHES_PATH", "data/matches.json"),
		MaxTurns:       envOrDefaultInt("MAX_TURNS_DEFAULT", 40),
		CORSOrigin:     envOrDefault("CORS_ORIGIN", "*"),
		RateLimitRPS:   float64(envOrDefaultInt("RATE_LIMIT_RPS", 10)),
		RateLimitBurst: envOrDefaultInt("RATE_LIMIT_BURST", 20),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

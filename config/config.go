// Package config loads server settings from an optional .env file and
// LEDGER_* environment variables.
//
// Keys in .env may be written with or without the LEDGER_ prefix
// (LEDGER_PORT=9090 and PORT=9090 are the same setting). Precedence is
// environment, then .env, then built-in defaults.
package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port int
}

type StorageConfig struct {
	// DBPath is the SQLite database file; ":memory:" keeps nothing on disk.
	DBPath string
	// SnapshotKey is the key the ledger snapshot is stored under.
	SnapshotKey string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration. Missing files are fine; defaults apply.
func Load() *Config {
	return load(".env")
}

// envPrefix is the prefix of environment variables, and optionally of .env keys.
const envPrefix = "LEDGER"

func load(envFile string) *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "bizledger")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "ledger.db")
	v.SetDefault("SNAPSHOT_KEY", "ledger")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// .env values replace the built-in defaults under their unprefixed
	// name; AutomaticEnv still wins over both.
	file := viper.New()
	file.SetConfigFile(envFile)
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}
	prefix := strings.ToLower(envPrefix) + "_"
	for _, key := range file.AllKeys() {
		v.SetDefault(strings.TrimPrefix(key, prefix), file.Get(key))
	}

	return &Config{
		App: AppConfig{
			Name: v.GetString("APP_NAME"),
			Env:  v.GetString("APP_ENV"),
			Port: v.GetInt("PORT"),
		},
		Storage: StorageConfig{
			DBPath:      v.GetString("DB_PATH"),
			SnapshotKey: v.GetString("SNAPSHOT_KEY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

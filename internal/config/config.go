package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const ConfigFileEnv = "CONFIG_FILE"

type Config struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	AllowOrigins    []string `toml:"allow_origins"`
	LogLevel        string   `toml:"log_level"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
	LogFile         string   `toml:"log_file"`
	StorePath       string   `toml:"store_path"`
	ReportTTL       Duration `toml:"report_ttl"`         // "24h", "30m"
	RateLimitPerMin int      `toml:"rate_limit_per_min"` // 0 = без ограничения
	Match           Match    `toml:"match"`
}

// Match — значения по умолчанию для параметров сверки из запроса.
type Match struct {
	Threshold int    `toml:"threshold"`
	Scorer    string `toml:"scorer"`
	Dedupe    bool   `toml:"dedupe"`
}

func Defaults() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8082,
		AllowOrigins:    []string{"*"},
		LogLevel:        "info",
		MaxUploadMB:     256,
		LogFile:         "logs/match-service.log",
		StorePath:       "data/reports.db",
		ReportTTL:       Duration{24 * time.Hour},
		RateLimitPerMin: 30,
		Match: Match{
			Threshold: 80,
			Scorer:    "token_sort",
			Dedupe:    true,
		},
	}
}

// Load: значения по умолчанию → TOML-файл из CONFIG_FILE (если задан) → env.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.Host = getenv("HOST", cfg.Host)
	cfg.Port = getint("PORT", cfg.Port)
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.MaxUploadMB = getint("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.LogFile = getenv("LOG_FILE", cfg.LogFile)
	cfg.StorePath = getenv("STORE_PATH", cfg.StorePath)
	if d, err := time.ParseDuration(os.Getenv("REPORT_TTL")); err == nil {
		cfg.ReportTTL = Duration{d}
	}
	cfg.RateLimitPerMin = getint("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin)
	cfg.Match.Threshold = getint("MATCH_THRESHOLD", cfg.Match.Threshold)
	cfg.Match.Scorer = getenv("MATCH_SCORER", cfg.Match.Scorer)
	if b, err := strconv.ParseBool(os.Getenv("MATCH_DEDUPE")); err == nil {
		cfg.Match.Dedupe = b
	}

	if cfg.Match.Threshold < 0 || cfg.Match.Threshold > 100 {
		return cfg, fmt.Errorf("match threshold %d out of 0..100", cfg.Match.Threshold)
	}
	return cfg, nil
}

// Duration reads "1h30m" style strings from TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return i
}

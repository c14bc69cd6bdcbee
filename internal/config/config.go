package config

import (
	"log"
	"os"
	"strconv"

	"github.com/Simplici0/mpsdeal/internal/deal"
	"github.com/Simplici0/mpsdeal/internal/financing"
	"github.com/Simplici0/mpsdeal/internal/pricing"
)

const (
	defaultAppEnv        = "development"
	defaultDBPath        = "./mps.db"
	defaultPort          = "8080"
	defaultMigrationsDir = "migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	MigrationsDir string
	Port          string
	SeedDemo      bool
	Log           LogConfig
	Pricing       PricingConfig
}

type LogConfig struct {
	Level    string
	Encoding string
}

// PricingConfig holds the defaults applied to new projects.
type PricingConfig struct {
	Margin           float64
	PaperReamCost    float64
	IncludePaper     bool
	OveragePenalty   float64
	HorizonMonths    int
	DiscountRate     float64
	SelfFundedMonths int
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := Config{
		AppEnv:        getEnv("APP_ENV", defaultAppEnv),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		MigrationsDir: getEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		Port:          getEnv("PORT", defaultPort),
		SeedDemo:      getEnvBool("SEED_DEMO", false),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", ""),
			Encoding: getEnv("LOG_ENCODING", ""),
		},
		Pricing: PricingConfig{
			Margin:           getEnvFloat("DEFAULT_MARGIN", deal.DefaultMargin),
			PaperReamCost:    getEnvFloat("PAPER_REAM_COST", deal.DefaultPaperReamCost),
			IncludePaper:     getEnvBool("INCLUDE_PAPER", true),
			OveragePenalty:   getEnvFloat("OVERAGE_PENALTY", pricing.DefaultOveragePenalty),
			HorizonMonths:    getEnvInt("HORIZON_MONTHS", deal.DefaultHorizonMonths),
			DiscountRate:     getEnvFloat("DISCOUNT_RATE", 0),
			SelfFundedMonths: getEnvInt("SELF_FUNDED_MONTHS", financing.DefaultReferenceMonths),
		},
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the process runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Settings returns the deal settings a new project starts with.
func (p PricingConfig) Settings() deal.Settings {
	s := deal.DefaultSettings()
	s.Margin = p.Margin
	s.Paper.Included = p.IncludePaper
	s.Paper.ReamCost = p.PaperReamCost
	s.OveragePenalty = p.OveragePenalty
	s.HorizonMonths = p.HorizonMonths
	s.DiscountRate = p.DiscountRate
	return s
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("warning: invalid integer for %s: %s", key, v)
			return fallback
		}
		return i
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("warning: invalid number for %s: %s", key, v)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("warning: invalid boolean for %s: %s", key, v)
			return fallback
		}
		return b
	}
	return fallback
}

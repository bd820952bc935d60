// internal/infra/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"bugbounty_sla_bot/internal/domain/sla"

	"github.com/joho/godotenv"
)

const DefaultReportURLTemplate = "https://hackerone.com/reports/%d"

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string

	TelegramToken   string
	AdminTelegramID int64
	NagChatID       int64 // Chat that receives SLA reminders

	LogLevel    string
	Environment string

	BusinessTimezone string
	ContractStartDay int
	NagPolicy        sla.NagPolicy

	CronSpecSync string
	CronSpecNag  string

	SnapshotPath      string
	ReportURLTemplate string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.AdminTelegramID, err = optionalInt64("ADMIN_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.NagChatID, err = optionalInt64("NAG_CHAT_ID"); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOr("ENVIRONMENT", "development"))

	cfg.BusinessTimezone = envOr("BUSINESS_TIMEZONE", sla.DefaultTimezone)

	startDay := envOr("CONTRACT_START_DAY", "1")
	cfg.ContractStartDay, err = strconv.Atoi(startDay)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTRACT_START_DAY: %w", err)
	}
	if err := sla.ValidateStartDay(cfg.ContractStartDay); err != nil {
		return nil, fmt.Errorf("invalid CONTRACT_START_DAY: %w", err)
	}

	cfg.NagPolicy = sla.DefaultNagPolicy()
	if v := os.Getenv("SLA_DAYS"); v != "" {
		if cfg.NagPolicy.SLADays, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid SLA_DAYS: %w", err)
		}
	}
	if v := os.Getenv("NAG_OFFSETS"); v != "" {
		if cfg.NagPolicy.Offsets, err = ParseOffsets(v); err != nil {
			return nil, fmt.Errorf("invalid NAG_OFFSETS: %w", err)
		}
	}
	if err := cfg.NagPolicy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid nag policy: %w", err)
	}

	cfg.CronSpecSync = envOr("CRON_SPEC_SYNC", "* * * * *")  // Default: every minute
	cfg.CronSpecNag = envOr("CRON_SPEC_NAG", "*/15 * * * *") // Default: every 15 minutes

	cfg.SnapshotPath = os.Getenv("SNAPSHOT_PATH")
	cfg.ReportURLTemplate = envOr("REPORT_URL_TEMPLATE", DefaultReportURLTemplate)

	return cfg, nil
}

// RequireBot checks the settings needed to run the Telegram bot.
func (c *AppConfig) RequireBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if c.AdminTelegramID == 0 {
		return fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	if c.NagChatID == 0 {
		return fmt.Errorf("NAG_CHAT_ID is not set")
	}
	return nil
}

// RequireSnapshot checks that a snapshot source is configured.
func (c *AppConfig) RequireSnapshot() error {
	if c.SnapshotPath == "" {
		return fmt.Errorf("SNAPSHOT_PATH is not set")
	}
	return nil
}

// ParseOffsets parses a comma separated list such as "45,22,11".
func ParseOffsets(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	offsets := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("offset %q: %w", p, err)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func optionalInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

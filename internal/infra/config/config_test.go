package config_test

import (
	"errors"
	"testing"

	"bugbounty_sla_bot/internal/domain/sla"
	"bugbounty_sla_bot/internal/infra/config"

	"github.com/m-mizutani/gt"
)

var allKeys = []string{
	"DATABASE_URL", "TELEGRAM_TOKEN", "ADMIN_TELEGRAM_ID", "NAG_CHAT_ID",
	"LOG_LEVEL", "ENVIRONMENT", "BUSINESS_TIMEZONE", "CONTRACT_START_DAY",
	"SLA_DAYS", "NAG_OFFSETS", "CRON_SPEC_SYNC", "CRON_SPEC_NAG",
	"SNAPSHOT_PATH", "REPORT_URL_TEMPLATE",
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, kv[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/sla"})

	cfg, err := config.Load()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.DatabaseURL).Equal("postgres://localhost/sla")
	gt.Value(t, cfg.LogLevel).Equal("info")
	gt.Value(t, cfg.Environment).Equal("development")
	gt.Value(t, cfg.BusinessTimezone).Equal(sla.DefaultTimezone)
	gt.Value(t, cfg.ContractStartDay).Equal(1)
	gt.Value(t, cfg.NagPolicy).Equal(sla.DefaultNagPolicy())
	gt.Value(t, cfg.CronSpecSync).Equal("* * * * *")
	gt.Value(t, cfg.CronSpecNag).Equal("*/15 * * * *")
	gt.Value(t, cfg.ReportURLTemplate).Equal(config.DefaultReportURLTemplate)

	gt.Error(t, cfg.RequireBot())
	gt.Error(t, cfg.RequireSnapshot())
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":       "postgres://localhost/sla",
		"TELEGRAM_TOKEN":     "token",
		"ADMIN_TELEGRAM_ID":  "42",
		"NAG_CHAT_ID":        "-100123",
		"LOG_LEVEL":          "DEBUG",
		"ENVIRONMENT":        "Production",
		"BUSINESS_TIMEZONE":  "Europe/Berlin",
		"CONTRACT_START_DAY": "7",
		"SLA_DAYS":           "30",
		"NAG_OFFSETS":        "10, 5,1",
		"SNAPSHOT_PATH":      "/var/lib/slabot/reports.yaml",
	})

	cfg, err := config.Load()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.AdminTelegramID).Equal(int64(42))
	gt.Value(t, cfg.NagChatID).Equal(int64(-100123))
	gt.Value(t, cfg.LogLevel).Equal("debug")
	gt.Value(t, cfg.Environment).Equal("production")
	gt.Value(t, cfg.BusinessTimezone).Equal("Europe/Berlin")
	gt.Value(t, cfg.ContractStartDay).Equal(7)
	gt.Value(t, cfg.NagPolicy).Equal(sla.NagPolicy{SLADays: 30, Offsets: []int{10, 5, 1}})
	gt.NoError(t, cfg.RequireBot())
	gt.NoError(t, cfg.RequireSnapshot())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{}},
		{"start day beyond 28", map[string]string{"CONTRACT_START_DAY": "31"}},
		{"start day not a number", map[string]string{"CONTRACT_START_DAY": "first"}},
		{"admin id not a number", map[string]string{"ADMIN_TELEGRAM_ID": "me"}},
		{"ascending offsets", map[string]string{"NAG_OFFSETS": "1,2"}},
		{"offset beyond deadline", map[string]string{"SLA_DAYS": "10", "NAG_OFFSETS": "20"}},
		{"sla days not a number", map[string]string{"SLA_DAYS": "ninety"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := map[string]string{"DATABASE_URL": "postgres://localhost/sla"}
			if tc.name == "missing database url" {
				env = map[string]string{}
			}
			for k, v := range tc.env {
				env[k] = v
			}
			setEnv(t, env)

			_, err := config.Load()
			gt.Error(t, err)
		})
	}
}

func TestLoadStartDayError(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/sla", "CONTRACT_START_DAY": "0"})
	_, err := config.Load()
	gt.Bool(t, errors.Is(err, sla.ErrInvalidStartDay)).True()
}

func TestParseOffsets(t *testing.T) {
	got, err := config.ParseOffsets("45,22, 11,,5")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal([]int{45, 22, 11, 5})

	_, err = config.ParseOffsets("45,x")
	gt.Error(t, err)
}

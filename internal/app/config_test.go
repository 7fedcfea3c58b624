package app

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.Equal(t, "erp_finance.db", cfg.SQLitePath)
	require.Equal(t, "default", cfg.StoreSchema)
	require.Equal(t, "pt-BR", cfg.CurrencyLocale)
	require.Equal(t, "R$ ", cfg.CurrencyPrefix)
	require.Equal(t, "*/15 * * * *", cfg.WarmupCron)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_SCHEMA", "legacy")
	t.Setenv("REPORT_CACHE_TTL", "90s")
	t.Setenv("CURRENCY_LOCALE", "en-US")
	t.Setenv("CURRENCY_PREFIX", "$")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.StoreDriver)
	require.Equal(t, 90*time.Second, cfg.ReportCacheTTL)
	require.Equal(t, "$", cfg.FormatConfig().Prefix)
	require.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	chdir(t, t.TempDir())
	for key, value := range map[string]string{
		"STORE_DRIVER":    "mysql",
		"STORE_SCHEMA":    "spanish",
		"CURRENCY_LOCALE": "not a locale!",
		"LOG_LEVEL":       "verbose",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warn")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	level, err = ParseLogLevel("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, level)
}

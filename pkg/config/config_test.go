package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/stocklens/pkg/indicator"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocklens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(previous) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	config, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "info", config.Log.Level)
	require.Equal(t, ProviderYahoo, config.Provider.Kind)
	require.Equal(t, 30*time.Second, config.Provider.Timeout)
	require.Equal(t, 30*time.Second, config.Mail.Timeout)
	require.Equal(t, 3, config.Provider.Retries)
	require.Equal(t, 8080, config.Chart.Port)
	require.Equal(t, 60, config.Chart.Window)
	require.Equal(t, "7203.T", config.Chart.DefaultTicker)
	require.Equal(t, ":memory:", config.Storage.Path)
	require.Equal(t, 50, config.Storage.History)
	require.False(t, config.Telegram.Enabled)
	require.Empty(t, config.Telegram.Users)

	lookback, err := config.Lookback()
	require.NoError(t, err)
	require.Equal(t, 365*24*time.Hour, lookback)

	indicators, err := config.IndicatorConfig()
	require.NoError(t, err)
	require.Equal(t, indicator.Full(), indicators)
}

func TestLoad_File(t *testing.T) {
	chdir(t, t.TempDir())

	path := writeConfig(t, `
provider:
  kind: csv
  csv_dir: ./data
  lookback: 26w
  timeout: 5s
chart:
  port: 9090
  window: 120
indicators:
  variant: moving_averages
telegram:
  enabled: true
  token: secret
  users: [111, 222]
`)

	config, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ProviderCSV, config.Provider.Kind)
	require.Equal(t, "./data", config.Provider.CSVDir)
	require.Equal(t, 5*time.Second, config.Provider.Timeout)
	require.Equal(t, 9090, config.Chart.Port)
	require.Equal(t, 120, config.Chart.Window)
	require.Equal(t, []int{111, 222}, config.Telegram.Users)

	indicators, err := config.IndicatorConfig()
	require.NoError(t, err)
	require.Equal(t, indicator.MovingAverages(), indicators)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOCKLENS_CHART_PORT", "7070")
	t.Setenv("STOCKLENS_PROVIDER_LOOKBACK", "90d")
	t.Setenv("STOCKLENS_TELEGRAM_ENABLED", "true")
	t.Setenv("STOCKLENS_TELEGRAM_TOKEN", "secret")
	t.Setenv("STOCKLENS_TELEGRAM_USERS", "1, 2,3")

	path := writeConfig(t, "chart:\n  port: 9090\n")
	config, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 7070, config.Chart.Port)
	require.Equal(t, []int{1, 2, 3}, config.Telegram.Users)

	lookback, err := config.Lookback()
	require.NoError(t, err)
	require.Equal(t, 90*24*time.Hour, lookback)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOCKLENS_CHART_WINDOW=30\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STOCKLENS_CHART_WINDOW") })

	config, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 30, config.Chart.Window)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	for name, content := range map[string]string{
		"provider":       "provider:\n  kind: bloomberg\n",
		"csv dir":        "provider:\n  kind: csv\n",
		"lookback":       "provider:\n  lookback: forever\n",
		"variant":        "indicators:\n  variant: macd\n",
		"telegram users": "telegram:\n  enabled: true\n  token: x\n",
		"user id":        "telegram:\n  users: abc\n",
		"mail":           "mail:\n  enabled: true\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

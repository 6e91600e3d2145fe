package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, "Data/sp500.csv", c.Data.CatalogPath)
	assert.Equal(t, "Data/Daily", c.Data.DailyDir)
	assert.Equal(t, "yahoo", c.MarketData.Provider)
	assert.Equal(t, 30*time.Minute, c.Snapshot.LockTTL)
	assert.False(t, c.Snapshot.ContinueOnError)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), c.StartDate())
	assert.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
server:
  port: 8080
snapshot:
  continue_on_error: true
  cron: "0 22 * * 1-5"
market_data:
  start_date: "2020-06-01"
kafka:
  brokers: [localhost:9092]
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout, "untouched fields keep defaults")
	assert.True(t, c.Snapshot.ContinueOnError)
	assert.Equal(t, "0 22 * * 1-5", c.Snapshot.Cron)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "candlescan.snapshots", c.Kafka.Topic)
	assert.Equal(t, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), c.StartDate())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"port":       "server:\n  port: 70000\n",
		"provider":   "market_data:\n  provider: finnhub\n",
		"start date": "market_data:\n  start_date: 01/01/2021\n",
		"collect":    "logging:\n  collect:\n    enabled: true\n",
		"yaml":       "server: [",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DAILY_DIR", "/srv/daily")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("SNAPSHOT_CRON", "@daily")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, "/srv/daily", c.Data.DailyDir)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "redis", c.Redis.Host)
	assert.Equal(t, "@daily", c.Snapshot.Cron)
}

func TestLoadWithEnvValidates(t *testing.T) {
	t.Setenv("SNAPSHOT_START_DATE", "yesterday")

	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

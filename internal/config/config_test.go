package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "DATABASE_DRIVER", "PORT", "JWT_SECRET", "NUM_TOPICS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "miner.yaml", `
database:
  driver: sqlite
  url: topics.db
source:
  type: csv
  csv_path: chats.csv
  filter_period: true
model:
  num_topics: 6
  seed: 42
coherence:
  measure: u_mass
job:
  replace_existing: true
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "topics.db", cfg.Database.URL)
	assert.True(t, cfg.Source.FilterPeriod)
	assert.Equal(t, 6, cfg.Model.NumTopics)
	assert.Equal(t, uint64(42), cfg.Model.Seed)
	assert.Equal(t, "u_mass", cfg.Coherence.Measure)
	assert.True(t, cfg.Job.ReplaceExisting)

	// unset keys keep their defaults
	assert.Equal(t, 2, cfg.Model.Passes)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "miner.toml", `
[database]
driver = "sqlite"
url = ":memory:"

[model]
num_topics = 4
workers = 3

[emitter]
writes_per_second = 50.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Model.NumTopics)
	assert.Equal(t, 3, cfg.TrainerConfig().Workers)
	assert.Equal(t, 50.0, cfg.EmitterConfig().WritesPerSecond)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "miner.yaml", "model:\n  num_topics: 6\nserver:\n  port: \"9000\"\n")
	t.Setenv("NUM_TOPICS", "3")
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://db/topics")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Model.NumTopics)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, "postgres://db/topics", cfg.Database.URL)
}

func TestEnvInvalidNumTopics(t *testing.T) {
	clearEnv(t)
	t.Setenv("NUM_TOPICS", "ten")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "bad.yaml", "model: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero topics", func(c *Config) { c.Model.NumTopics = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown source", func(c *Config) { c.Source.Type = "kafka" }},
		{"csv without path", func(c *Config) { c.Source.CSVPath = "" }},
		{"postgres source on sqlite", func(c *Config) {
			c.Source.Type = "postgres"
			c.Database.Driver = "sqlite"
		}},
		{"unknown measure", func(c *Config) { c.Coherence.Measure = "c_uci" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestComponentConfigs(t *testing.T) {
	cfg := Default()

	assert.Equal(t, uint64(1), cfg.TrainerConfig().Seed)
	assert.Greater(t, cfg.TrainerConfig().Workers, 0)
	assert.Equal(t, 20, cfg.ScorerConfig().TopN)
	assert.Equal(t, 10, cfg.PipelineConfig().NumTopics)
	assert.Equal(t, 2, cfg.CleanerConfig().MinTokenLength)
}

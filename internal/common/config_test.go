package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WORKORDERS_CONFIG", "")
	t.Setenv("DB_URL", "")
	t.Setenv("MODEL_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("MODEL_RPS", "2.5")
	t.Setenv("SESSION_TTL", "90m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, ProviderGemini, cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.GeminiModel)
	assert.Equal(t, "g-key", cfg.Model.APIKey())
	assert.Equal(t, 2.5, cfg.Model.RPS)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2048, cfg.Imaging.MaxDimension)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_YAMLFileIsOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "workorders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: openai\n  openai_api_key: from-file\nimaging:\n  dpi: 150\n"), 0o600))
	t.Setenv("WORKORDERS_CONFIG", path)
	t.Setenv("RASTER_DPI", "300")
	t.Setenv("MODEL_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, "from-file", cfg.Model.APIKey())
	assert.Equal(t, 300, cfg.Imaging.DPI)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		Model:   ModelConfig{Provider: "claude", Timeout: time.Second},
		Imaging: ImagingConfig{DPI: 200, MaxDimension: 2048},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	cfg.Model.Provider = ProviderOpenAI
	require.Error(t, cfg.Validate())

	cfg.Model.OpenAIAPIKey = "k"
	require.NoError(t, cfg.Validate())

	require.Error(t, cfg.ValidateServer())
	cfg.Server = ServerConfig{HTTPAddr: ":8080", GRPCAddr: ":8081"}
	require.NoError(t, cfg.ValidateServer())
}

func TestStoreErrorKeepsDriverMessage(t *testing.T) {
	err := StoreError("insert work orders", errors.New(`relation "work_orders" does not exist`))

	assert.True(t, errors.Is(err, ErrDatabase))
	assert.Equal(t, `insert work orders: relation "work_orders" does not exist`, PublicMessage(err))
	assert.Nil(t, StoreError("noop", nil))
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("sort_by", "colour", OneOf("date", "hours")).
		Field("page", 0, IntRange(1, 10)).
		Field("page_size", 5, IntRange(1, 10))

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)
	err := v.Err()
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, PublicMessage(err), "must be one of date, hours")
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	ctx, cancel = WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(100), cfg.Server.MaxUploadMB)
	assert.Equal(t, "openai", cfg.Classifier.Primary.Provider)
	assert.Equal(t, 1, cfg.Classifier.Primary.Level)
	assert.Equal(t, 2, cfg.Classifier.Secondary.Level)
	assert.Equal(t, 4, cfg.Pipeline.PageConcurrency)
	assert.False(t, cfg.S3.Enabled())
	assert.Empty(t, cfg.Doctype.TablePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KYCDOCS_SERVER_PORT", ":9000")
	t.Setenv("KYCDOCS_CLASSIFIER_PRIMARY_PROVIDER", "gemini")
	t.Setenv("KYCDOCS_CLASSIFIER_SECONDARY_PROVIDER", "openai")
	t.Setenv("KYCDOCS_EXTRACTOR_PRIMARY_DEFAULT_MODEL", "gpt-4o-mini")
	t.Setenv("KYCDOCS_PIPELINE_PAGE_CONCURRENCY", "8")
	t.Setenv("KYCDOCS_S3_BUCKET", "kyc-archive")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Classifier.Primary.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Extractor.Primary.DefaultModel)
	assert.Equal(t, 8, cfg.Pipeline.PageConcurrency)
	assert.True(t, cfg.S3.Enabled())

	sec := cfg.Classifier.SecondaryConfig()
	require.NotNil(t, sec)
	assert.Equal(t, "openai", sec.Provider)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Port)
}

func TestSecondaryConfig_UnsetIsNil(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.Classifier.SecondaryConfig())
	assert.Nil(t, cfg.Extractor.SecondaryConfig())
}

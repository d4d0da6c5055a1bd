package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FUNAMBOARD_ADDR", "")
	t.Setenv("FUNAMBOARD_TUNING", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "", cfg.TuningPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FUNAMBOARD_ADDR", ":9999")
	t.Setenv("FUNAMBOARD_TUNING", "tuning.yaml")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "tuning.yaml", cfg.TuningPath)
}

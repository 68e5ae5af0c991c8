package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	assert.Equal(t, "zazi-izandi.db", cfg.GetDBPath())
	assert.Equal(t, "exports", cfg.GetExportDir())
	assert.Equal(t, 7, cfg.GetGroupSize())
	assert.Equal(t, 3, cfg.GetSameProgressMinGroups())
	assert.Equal(t, ":8080", cfg.GetListenAddr())
	assert.False(t, cfg.GetAdminRoutes())
	assert.Equal(t, "Africa/Johannesburg", cfg.GetLocation().String())
	assert.Equal(t, "https://api.openai.com/v1", cfg.GetAIBaseURL())
	assert.Equal(t, "gpt-4o-mini", cfg.GetAIModel())
}

func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"db_path": "/tmp/test.db", "group_size": 5}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.GetDBPath())
	assert.Equal(t, 5, cfg.GetGroupSize())
	// Unset fields still resolve to defaults.
	assert.Equal(t, ":8080", cfg.GetListenAddr())
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"empty", Empty(), false},
		{"valid group size", &Config{GroupSize: ptrInt(5)}, false},
		{"group size too small", &Config{GroupSize: ptrInt(1)}, true},
		{"threshold too small", &Config{SameProgressMinGroups: ptrInt(1)}, true},
		{"valid timezone", &Config{Timezone: ptrString("UTC")}, false},
		{"bogus timezone", &Config{Timezone: ptrString("Mars/Olympus")}, true},
		{"admin routes on", &Config{AdminRoutes: ptrBool(true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetAIKeyFromEnv(t *testing.T) {
	t.Setenv("TEST_ZAZI_AI_KEY", "sk-test")

	cfg := &Config{AIKeyEnv: ptrString("TEST_ZAZI_AI_KEY")}
	assert.Equal(t, "sk-test", cfg.GetAIKey())

	cfg = &Config{AIKeyEnv: ptrString("TEST_ZAZI_AI_KEY_UNSET")}
	assert.Empty(t, cfg.GetAIKey())
}

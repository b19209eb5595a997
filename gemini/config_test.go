package gemini

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := ResolveConfig("", fakeEnv(nil))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.BinPath)
	assert.Equal(t, "GEMINI.md", cfg.ContextFile)
	assert.Equal(t, DefaultTimeoutSecs*time.Second, cfg.DefaultTimeout)
	assert.Empty(t, cfg.ForceModel)
}

func TestResolveConfig_EnvOverrides(t *testing.T) {
	cfg, err := ResolveConfig("", fakeEnv(map[string]string{
		"GEMINI_BIN":             "/opt/gemini/bin/gemini",
		"GEMINI_DEFAULT_TIMEOUT": "120",
		"GEMINI_FORCE_MODEL":     "gemini-pro",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/opt/gemini/bin/gemini", cfg.BinPath)
	assert.Equal(t, 120*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, "gemini-pro", cfg.ForceModel)
}

func TestResolveConfig_OutOfRangeTimeoutIgnored(t *testing.T) {
	for _, v := range []string{"0", "3601", "-10", "abc"} {
		t.Run(v, func(t *testing.T) {
			cfg, err := ResolveConfig("", fakeEnv(map[string]string{
				"GEMINI_DEFAULT_TIMEOUT": v,
			}))
			require.NoError(t, err)
			assert.Equal(t, DefaultTimeoutSecs*time.Second, cfg.DefaultTimeout)
		})
	}
}

func TestResolveConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"bin: /usr/local/bin/gemini\nforce_model: gemini-flash\ndefault_timeout_secs: 300\ncontext_file: AGENT.md\n"), 0o644))

	cfg, err := ResolveConfig(path, fakeEnv(nil))
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/gemini", cfg.BinPath)
	assert.Equal(t, "gemini-flash", cfg.ForceModel)
	assert.Equal(t, 300*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, "AGENT.md", cfg.ContextFile)
}

func TestResolveConfig_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bin: from-file\n"), 0o644))

	cfg, err := ResolveConfig(path, fakeEnv(map[string]string{"GEMINI_BIN": "from-env"}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.BinPath)
}

func TestResolveConfig_MissingFileIsError(t *testing.T) {
	_, err := ResolveConfig(filepath.Join(t.TempDir(), "nope.yaml"), fakeEnv(nil))
	assert.Error(t, err)
}

func TestResolveConfig_MalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	_, err := ResolveConfig(path, fakeEnv(nil))
	assert.Error(t, err)
}

func TestNewRunner_ClampsDefaultTimeout(t *testing.T) {
	r := NewRunner(Config{DefaultTimeout: time.Hour * 24})
	assert.Equal(t, DefaultTimeoutSecs*time.Second, r.cfg.DefaultTimeout)

	r = NewRunner(Config{DefaultTimeout: 30 * time.Second})
	assert.Equal(t, 30*time.Second, r.cfg.DefaultTimeout)

	r = NewRunner(Config{})
	assert.Equal(t, DefaultTimeoutSecs*time.Second, r.cfg.DefaultTimeout)
}

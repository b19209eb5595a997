package gemini

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides recognized by ResolveConfig.
const (
	envBin            = "GEMINI_BIN"
	envDefaultTimeout = "GEMINI_DEFAULT_TIMEOUT"
	envForceModel     = "GEMINI_FORCE_MODEL"
)

const (
	defaultBin      = "gemini"
	contextFileName = "GEMINI.md"
)

// Config holds runner construction parameters. Environment-derived defaults
// are resolved once, up front, so the runner itself performs no ambient
// lookups and stays testable without process-wide environment mutation.
type Config struct {
	// BinPath is the gemini CLI binary to spawn (default: "gemini" in PATH).
	BinPath string

	// ForceModel applies when a request carries no model of its own.
	ForceModel string

	// WorkDir is the working directory for the CLI process. Empty inherits
	// the parent's.
	WorkDir string

	// ContextFile is the path of the prefix file prepended to every prompt,
	// resolved relative to WorkDir (default: GEMINI.md).
	ContextFile string

	// DefaultTimeout applies when a request carries no timeout of its own.
	DefaultTimeout time.Duration
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BinPath:        defaultBin,
		ContextFile:    contextFileName,
		DefaultTimeout: DefaultTimeoutSecs * time.Second,
	}
}

// FileConfig is the optional YAML configuration file.
type FileConfig struct {
	Bin                string `yaml:"bin"`
	ForceModel         string `yaml:"force_model"`
	WorkDir            string `yaml:"work_dir"`
	ContextFile        string `yaml:"context_file"`
	DefaultTimeoutSecs int    `yaml:"default_timeout_secs"`
}

// ResolveConfig builds a Config from built-in defaults, an optional YAML
// file, and environment overrides, in that order of precedence. An
// out-of-range default timeout from either source is ignored in favor of
// the hardcoded default, never an error. getenv may be nil, in which case
// os.Getenv is used.
func ResolveConfig(path string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		var fc FileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if fc.Bin != "" {
			cfg.BinPath = fc.Bin
		}
		if fc.ForceModel != "" {
			cfg.ForceModel = fc.ForceModel
		}
		if fc.WorkDir != "" {
			cfg.WorkDir = fc.WorkDir
		}
		if fc.ContextFile != "" {
			cfg.ContextFile = fc.ContextFile
		}
		if fc.DefaultTimeoutSecs != 0 {
			if d, ok := timeoutFromSecs(fc.DefaultTimeoutSecs); ok {
				cfg.DefaultTimeout = d
			} else {
				slog.Warn("ignoring out-of-range default_timeout_secs in config file",
					"value", fc.DefaultTimeoutSecs)
			}
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(envBin); v != "" {
		cfg.BinPath = v
	}
	if v := getenv(envForceModel); v != "" {
		cfg.ForceModel = v
	}
	if v := getenv(envDefaultTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("ignoring non-numeric "+envDefaultTimeout, "value", v)
		} else if d, ok := timeoutFromSecs(secs); ok {
			cfg.DefaultTimeout = d
		} else {
			slog.Warn("ignoring out-of-range "+envDefaultTimeout, "value", v)
		}
	}

	return cfg, nil
}

func timeoutFromSecs(secs int) (time.Duration, bool) {
	if secs < MinTimeoutSecs || secs > MaxTimeoutSecs {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

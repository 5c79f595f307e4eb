package ffbind

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/version"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLibraryDir      = "FFBIND_LIB_DIR"
	EnvLogLevel        = "FFBIND_LOG_LEVEL"
	EnvLegacyThreshold = "FFBIND_LEGACY_THRESHOLD"
)

// Config controls how the runtime loads and interprets the native library.
type Config struct {
	// LibraryDir is searched for the FFmpeg shared libraries before the
	// platform defaults. Empty means platform defaults only.
	LibraryDir string

	// Version bounds the accepted libavutil major versions.
	Version version.Config

	// LogLevel is applied to logrus and mapped onto av_log_set_level.
	LogLevel logrus.Level
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Version:  version.DefaultConfig(),
		LogLevel: logrus.InfoLevel,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies FFBIND_* overrides.
// Moving the legacy threshold moves the accepted range with it so that
// exactly one legacy and one current major remain accepted.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv(EnvLibraryDir); dir != "" {
		cfg.LibraryDir = dir
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		level, err := logrus.ParseLevel(s)
		if err != nil {
			return Config{}, fmt.Errorf("ffbind: %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}
	if s := os.Getenv(EnvLegacyThreshold); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("ffbind: %s: %w", EnvLegacyThreshold, err)
		}
		cfg.Version.LegacyThreshold = n
		cfg.Version.MinMajor = n - 1
		cfg.Version.MaxMajor = n
	}
	if err := cfg.Version.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

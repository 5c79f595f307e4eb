//go:build !ios && !android && (amd64 || arm64)

package ffbind

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/avfilter"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/internal/bindings"
)

type nativeAVUtil struct{ avutil.PixFmtTable }

func (nativeAVUtil) Version() uint32 { return avutil.Version() }

// FilterVersion loads libavfilter when it can. A process that only has
// libavutil still gets a Runtime.
func (nativeAVUtil) FilterVersion() uint32 {
	if err := avfilter.Init(); err != nil {
		return 0
	}
	return avfilter.Version()
}

// loadAVUtil is replaced in tests.
var loadAVUtil = avutil.Init

var (
	defaultOnce sync.Once
	defaultRT   *Runtime
	defaultErr  error
)

// Init loads libavutil according to cfg and builds a Runtime from it.
func Init(cfg Config) (*Runtime, error) {
	logrus.SetLevel(cfg.LogLevel)
	if cfg.LibraryDir != "" {
		bindings.SetSearchDir(cfg.LibraryDir)
	}
	if err := loadAVUtil(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Init",
			"dir":      cfg.LibraryDir,
			"error":    err.Error(),
		}).Error("Failed to load libavutil")
		return nil, fmt.Errorf("%w: %v", ErrNotLoaded, err)
	}
	// Not every build exports the level calls; quiet failure keeps the
	// library's default threshold.
	_ = avutil.SetLogLevel(avutil.LogLevelFor(cfg.LogLevel))

	return New(cfg, nativeAVUtil{})
}

// Default returns the process-wide Runtime configured from the environment.
// The first call does the work; later calls return the same result.
func Default() (*Runtime, error) {
	defaultOnce.Do(func() {
		cfg, err := ConfigFromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		defaultRT, defaultErr = Init(cfg)
	})
	return defaultRT, defaultErr
}

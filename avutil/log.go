package avutil

import "github.com/sirupsen/logrus"

// LogLevel is an AV_LOG_* threshold.
type LogLevel int32

// Log level constants matching FFmpeg's AV_LOG_* values.
const (
	LogQuiet   LogLevel = -8 // Print no output
	LogPanic   LogLevel = 0  // Something went really wrong, crash
	LogFatal   LogLevel = 8  // Something went wrong, exit now
	LogError   LogLevel = 16 // Something went wrong, recovery possible
	LogWarning LogLevel = 24 // Something unexpected but recovery possible
	LogInfo    LogLevel = 32 // Standard information
	LogVerbose LogLevel = 40 // Detailed information
	LogDebug   LogLevel = 48 // Stuff for debugging
	LogTrace   LogLevel = 56 // Extremely verbose debugging
)

// String returns the level name as the ffmpeg CLI spells it.
func (l LogLevel) String() string {
	switch {
	case l <= LogQuiet:
		return "quiet"
	case l <= LogPanic:
		return "panic"
	case l <= LogFatal:
		return "fatal"
	case l <= LogError:
		return "error"
	case l <= LogWarning:
		return "warning"
	case l <= LogInfo:
		return "info"
	case l <= LogVerbose:
		return "verbose"
	case l <= LogDebug:
		return "debug"
	default:
		return "trace"
	}
}

// LogLevelFor maps a logrus level to the closest native threshold, so the
// library and the Go side log at the same verbosity.
func LogLevelFor(level logrus.Level) LogLevel {
	switch level {
	case logrus.PanicLevel:
		return LogPanic
	case logrus.FatalLevel:
		return LogFatal
	case logrus.ErrorLevel:
		return LogError
	case logrus.WarnLevel:
		return LogWarning
	case logrus.InfoLevel:
		return LogInfo
	case logrus.DebugLevel:
		return LogDebug
	default:
		return LogTrace
	}
}

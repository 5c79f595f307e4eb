// Package version resolves which optional AVFrame / AVPixFmtDescriptor
// fields the loaded libavutil was compiled with, and which libavfilter
// versions share its filter link and pad layouts.
//
// This is the single correctness-critical assumption of the struct mirror:
// every offset computed by package abi follows from the Capabilities
// returned here. A libavutil whose major version is outside the configured
// range is rejected instead of guessed at.
package version

import (
	"errors"
	"fmt"
)

// DefaultLegacyThreshold is the libavutil major version at which the
// FF_API_PKT_PTS, FF_API_ERROR_FRAME, FF_API_FRAME_QP and
// FF_API_PLUS1_MINUS1 fields were removed (FFmpeg 5.0).
const DefaultLegacyThreshold = 57

// ErrUnsupported is returned when the libavutil major version is outside
// the set of layouts this mirror knows about.
var ErrUnsupported = errors.New("ffbind: unsupported libavutil major version")

// Range tags the layout family a major version belongs to.
type Range int

const (
	// RangeLegacy has every deprecated field present.
	RangeLegacy Range = iota
	// RangeCurrent has every deprecated field removed.
	RangeCurrent
)

// String returns the range name.
func (r Range) String() string {
	switch r {
	case RangeLegacy:
		return "legacy"
	case RangeCurrent:
		return "current"
	default:
		return fmt.Sprintf("Range(%d)", int(r))
	}
}

// Capabilities are the independent field-presence flags.
type Capabilities struct {
	PktPTS          bool // AVFrame.pkt_pts
	ErrorFrame      bool // AVFrame.error[8]
	FrameQP         bool // AVFrame.qscale_table, qstride, qscale_type, qp_table_buf
	PlusOneMinusOne bool // AVComponentDescriptor.step_minus1, depth_minus1, offset_plus1

	// PadFlags selects the libavfilter 8 AVFilterPad: an int flags word
	// after type, one get_buffer union, and no needs_writable.
	PadFlags bool
}

// Info is the resolved version state for the process lifetime.
type Info struct {
	Major int
	Range Range
	Caps  Capabilities
}

// Config bounds the versions the resolver accepts.
type Config struct {
	// LegacyThreshold is the first major version without the deprecated fields.
	LegacyThreshold int
	// MinMajor and MaxMajor bound the accepted major versions (inclusive).
	MinMajor int
	MaxMajor int
	// FilterWindows maps each range to the libavfilter versions whose
	// AVFilterLink and AVFilterPad match it. Nil means DefaultFilterWindows.
	FilterWindows map[Range]FilterWindow
}

// DefaultConfig accepts libavutil 56 (FFmpeg 4.x) and 57 (FFmpeg 5.x).
func DefaultConfig() Config {
	return Config{
		LegacyThreshold: DefaultLegacyThreshold,
		MinMajor:        DefaultLegacyThreshold - 1,
		MaxMajor:        DefaultLegacyThreshold,
	}
}

// Validate checks that the config describes a non-empty range.
func (c Config) Validate() error {
	if c.MinMajor <= 0 || c.MaxMajor < c.MinMajor {
		return fmt.Errorf("ffbind: invalid version range [%d, %d]", c.MinMajor, c.MaxMajor)
	}
	if c.LegacyThreshold <= 0 {
		return fmt.Errorf("ffbind: invalid legacy threshold %d", c.LegacyThreshold)
	}
	return nil
}

// Resolve derives the capability flags for a libavutil major version.
func (c Config) Resolve(major int) (Info, error) {
	if err := c.Validate(); err != nil {
		return Info{}, err
	}
	if major < c.MinMajor || major > c.MaxMajor {
		return Info{}, fmt.Errorf("%w: %d (supported %d..%d)", ErrUnsupported, major, c.MinMajor, c.MaxMajor)
	}

	legacy := major < c.LegacyThreshold
	info := Info{
		Major: major,
		Range: RangeCurrent,
		Caps: Capabilities{
			PktPTS:          legacy,
			ErrorFrame:      legacy,
			FrameQP:         legacy,
			PlusOneMinusOne: legacy,
			PadFlags:        !legacy,
		},
	}
	if legacy {
		info.Range = RangeLegacy
	}
	return info, nil
}

// Resolve uses DefaultConfig.
func Resolve(major int) (Info, error) {
	return DefaultConfig().Resolve(major)
}

// FilterWindow is an inclusive span of libavfilter minor versions under
// one major.
type FilterWindow struct {
	Major    int
	MinMinor int
	MaxMinor int
}

// Contains reports whether the packed libavfilter version falls inside w.
func (w FilterWindow) Contains(packed uint32) bool {
	minor := Minor(packed)
	return Major(packed) == w.Major && minor >= w.MinMinor && minor <= w.MaxMinor
}

func (w FilterWindow) String() string {
	return fmt.Sprintf("%d.%d..%d.%d", w.Major, w.MinMinor, w.Major, w.MaxMinor)
}

// DefaultFilterWindows pairs the legacy range with libavfilter 7.110+
// (FFmpeg 4.4, the first with incfg/outcfg) and the current range with
// libavfilter 8.24 to 8.43 (FFmpeg 5.0). 8.44 added AVFilterLink.ch_layout.
func DefaultFilterWindows() map[Range]FilterWindow {
	return map[Range]FilterWindow{
		RangeLegacy:  {Major: 7, MinMinor: 110, MaxMinor: 255},
		RangeCurrent: {Major: 8, MinMinor: 24, MaxMinor: 43},
	}
}

// CheckFilter rejects a libavfilter whose link and pad layouts are not the
// ones NewLayouts builds for info.
func (c Config) CheckFilter(info Info, packed uint32) error {
	windows := c.FilterWindows
	if windows == nil {
		windows = DefaultFilterWindows()
	}
	w, ok := windows[info.Range]
	if !ok {
		return fmt.Errorf("%w: no libavfilter window for %s range", ErrUnsupported, info.Range)
	}
	if !w.Contains(packed) {
		return fmt.Errorf("%w: libavfilter %s with libavutil %d (supported %s)",
			ErrUnsupported, String(packed), info.Major, w)
	}
	return nil
}

// Major extracts the major number from an AV_VERSION_INT packed version.
func Major(packed uint32) int {
	return int(packed >> 16)
}

// Minor extracts the minor number from an AV_VERSION_INT packed version.
func Minor(packed uint32) int {
	return int((packed >> 8) & 0xFF)
}

// String formats an AV_VERSION_INT packed version (e.g. "57.17.100").
func String(packed uint32) string {
	return fmt.Sprintf("%d.%d.%d", packed>>16, (packed>>8)&0xFF, packed&0xFF)
}

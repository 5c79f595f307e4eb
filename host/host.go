// Package host is the surface an embedding filter host drives: it opens a
// registered filter class behind an integer handle, then forwards the
// format query, link configuration and per-frame calls to it.
//
// Every entry point reports failure as an error whose Code is an AVERROR
// value, so the C side can return it unchanged.
package host

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind"
	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/filter"
	"github.com/obinnaokechukwu/ffbind/internal/handles"
)

// Handle identifies an open filter instance.
type Handle uintptr

var (
	// ErrInvalidHandle is returned for a handle that was never issued or
	// has been closed.
	ErrInvalidHandle = errors.New("ffbind: invalid filter handle")

	// ErrNoRuntime is returned by Open when rt is nil.
	ErrNoRuntime = errors.New("ffbind: no runtime")
)

type instance struct {
	class   string
	adapter *filter.Adapter
}

var instances = handles.New[*instance]()

// Open constructs class with arg and returns its handle.
func Open(rt *ffbind.Runtime, class, arg string) (Handle, error) {
	if rt == nil {
		return 0, fail("Open", class, ErrNoRuntime)
	}
	a, err := rt.NewFilter(class, arg)
	if err != nil {
		return 0, fail("Open", class, err)
	}
	h := Handle(instances.Register(&instance{class: class, adapter: a}))
	logrus.WithFields(logrus.Fields{
		"function": "Open",
		"class":    class,
		"handle":   uintptr(h),
	}).Debug("Filter opened")
	return h, nil
}

func lookup(op string, h Handle) (*instance, error) {
	inst, ok := instances.Lookup(uintptr(h))
	if !ok {
		return nil, fail(op, "", fmt.Errorf("%w: %d", ErrInvalidHandle, h))
	}
	return inst, nil
}

// QueryFormats writes the filter's supported pixel format ids into dst and
// returns how many it wrote. A filter without a format list writes none.
// If dst is too short the ids that fit are written and the full count is
// returned with an error.
func QueryFormats(h Handle, dst []int32) (int, error) {
	inst, err := lookup("QueryFormats", h)
	if err != nil {
		return 0, err
	}
	ids, err := inst.adapter.FormatIDs()
	if err != nil {
		return 0, fail("QueryFormats", inst.class, err)
	}
	n := copy(dst, ids)
	if n < len(ids) {
		return len(ids), fail("QueryFormats", inst.class,
			fmt.Errorf("%w: %d formats, room for %d", errTooSmall, len(ids), len(dst)))
	}
	return n, nil
}

// ConfigInput forwards an input link to the filter.
func ConfigInput(h Handle, link abi.Raw) error {
	inst, err := lookup("ConfigInput", h)
	if err != nil {
		return err
	}
	if err := inst.adapter.ConfigureInput(link); err != nil {
		return fail("ConfigInput", inst.class, err)
	}
	return nil
}

// ConfigOutput forwards an output link to the filter.
func ConfigOutput(h Handle, link abi.Raw) error {
	inst, err := lookup("ConfigOutput", h)
	if err != nil {
		return err
	}
	if err := inst.adapter.ConfigureOutput(link); err != nil {
		return fail("ConfigOutput", inst.class, err)
	}
	return nil
}

// FilterFrame runs the filter on one input frame, writing into out.
func FilterFrame(h Handle, in, out abi.Raw) error {
	inst, err := lookup("FilterFrame", h)
	if err != nil {
		return err
	}
	if err := inst.adapter.Process(in, out); err != nil {
		return fail("FilterFrame", inst.class, err)
	}
	return nil
}

// Close releases the handle. Closing twice fails with ErrInvalidHandle.
func Close(h Handle) error {
	if _, ok := instances.Unregister(uintptr(h)); !ok {
		return fail("Close", "", fmt.Errorf("%w: %d", ErrInvalidHandle, h))
	}
	return nil
}

// OpenCount returns the number of live handles.
func OpenCount() int { return instances.Count() }

var errTooSmall = errors.New("ffbind: destination too small")

// Code maps err onto the AVERROR value the host should return.
// nil maps to 0. Errors from user filter code map to AVERROR_EXTERNAL.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	var avErr *avutil.Error
	switch {
	case errors.As(err, &avErr):
		return avErr.Code
	case errors.Is(err, filter.ErrUnknownClass):
		return avutil.AVERROR_FILTER_NOT_FOUND
	case errors.Is(err, ErrInvalidHandle),
		errors.Is(err, ErrNoRuntime),
		errors.Is(err, errTooSmall),
		errors.Is(err, filter.ErrBadArgument),
		errors.Is(err, abi.ErrNilPointer),
		errors.Is(err, abi.ErrShortBuffer):
		return avutil.AVERROR_EINVAL
	}
	return avutil.AVERROR_EXTERNAL
}

func fail(op, class string, err error) error {
	logrus.WithFields(logrus.Fields{
		"function": op,
		"class":    class,
		"code":     Code(err),
		"error":    err.Error(),
	}).Warn("Filter callback failed")
	return err
}

// Package platform describes the target: the C data model the struct
// mirror lays out against and how FFmpeg shared libraries are named.
package platform

import (
	"runtime"
	"strconv"
	"unsafe"
)

// PointerSize is sizeof(void*) and sizeof(size_t).
const PointerSize = unsafe.Sizeof(uintptr(0))

// Is64Bit is true on LP64 and LLP64 targets, the only ones the mirror
// supports.
const Is64Bit = PointerSize == 8

// LibraryName returns the shared library file name for name on goos.
// Version 0 means the unversioned development symlink.
//
//	linux   avutil 57 -> libavutil.so.57
//	darwin  avutil 57 -> libavutil.57.dylib
//	windows avutil 57 -> avutil-57.dll
func LibraryName(goos, name string, version int) string {
	v := strconv.Itoa(version)
	switch goos {
	case "darwin":
		if version > 0 {
			return "lib" + name + "." + v + ".dylib"
		}
		return "lib" + name + ".dylib"
	case "windows":
		if version > 0 {
			return name + "-" + v + ".dll"
		}
		return name + ".dll"
	default:
		if version > 0 {
			return "lib" + name + ".so." + v
		}
		return "lib" + name + ".so"
	}
}

// FormatLibraryName is LibraryName for the running OS.
func FormatLibraryName(name string, version int) string {
	return LibraryName(runtime.GOOS, name, version)
}

// Candidates lists the file names to try for name, one per version in the
// given order, then the unversioned name.
func Candidates(name string, versions []int) []string {
	out := make([]string, 0, len(versions)+1)
	for _, v := range versions {
		out = append(out, FormatLibraryName(name, v))
	}
	return append(out, FormatLibraryName(name, 0))
}

//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading FFmpeg shared libraries and registering
// function bindings using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/ffbind/internal/platform"
)

// ErrNotLoaded is returned when FFmpeg functions are called before Load().
var ErrNotLoaded = errors.New("ffbind: FFmpeg libraries not loaded; call ffbind.Init() first")

// ErrLibraryNotFound is returned when a required FFmpeg library cannot be found.
var ErrLibraryNotFound = errors.New("ffbind: FFmpeg library not found")

// ErrSymbolNotFound is returned when a library lacks a required symbol.
var ErrSymbolNotFound = errors.New("ffbind: symbol not found")

// Library major versions probed, newest supported first.
var (
	AVUtilVersions   = []int{57, 56}
	AVFilterVersions = []int{8, 7}
	SWScaleVersions  = []int{6, 5}
)

// Library handles
var (
	libAVUtil   uintptr
	libAVFilter uintptr
	libSWScale  uintptr

	searchDir string

	loaded   bool
	loadOnce sync.Once
	loadErr  error
	extraMu  sync.Mutex
)

// SetSearchDir makes Load look in dir before the platform search paths.
// It has no effect once Load has run.
func SetSearchDir(dir string) {
	searchDir = dir
}

// IsLoaded returns true if FFmpeg libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads libavutil. It is safe to call multiple times; subsequent calls
// return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error
	libAVUtil, err = loadLibrary("avutil", AVUtilVersions)
	if err != nil {
		return fmt.Errorf("loading libavutil: %w", err)
	}
	return nil
}

// LoadAVFilter loads libavfilter (after libavutil). Optional: only the
// layout self-check needs it.
func LoadAVFilter() (uintptr, error) {
	return loadExtra(&libAVFilter, "avfilter", AVFilterVersions)
}

// LoadSWScale loads libswscale (after libavutil). Optional.
func LoadSWScale() (uintptr, error) {
	return loadExtra(&libSWScale, "swscale", SWScaleVersions)
}

func loadExtra(handle *uintptr, name string, versions []int) (uintptr, error) {
	if err := Load(); err != nil {
		return 0, err
	}
	extraMu.Lock()
	defer extraMu.Unlock()
	if *handle != 0 {
		return *handle, nil
	}
	lib, err := loadLibrary(name, versions)
	if err != nil {
		return 0, err
	}
	*handle = lib
	return lib, nil
}

// RegisterFunc binds the C function name in lib to fptr.
// Unlike purego.RegisterLibFunc it reports a missing symbol as an error.
func RegisterFunc(fptr any, lib uintptr, name string) error {
	sym, err := purego.Dlsym(lib, name)
	if err != nil || sym == 0 {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	purego.RegisterFunc(fptr, sym)
	return nil
}

// loadLibrary tries every candidate file name in each search path, then
// lets the system loader search.
func loadLibrary(name string, versions []int) (uintptr, error) {
	candidates := platform.Candidates(name, versions)
	for _, dir := range LibrarySearchPaths() {
		for _, file := range candidates {
			if lib, err := tryOpen(filepath.Join(dir, file)); err == nil {
				return lib, nil
			}
		}
	}
	for _, file := range candidates {
		if lib, err := tryOpen(file); err == nil {
			return lib, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
// FFmpeg libraries cross-reference each other, so RTLD_GLOBAL is required.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary returns the first candidate path that exists on disk.
// This is useful for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	candidates := platform.Candidates(name, versions)
	for _, dir := range LibrarySearchPaths() {
		for _, file := range candidates {
			path := filepath.Join(dir, file)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns platform-specific library search paths,
// led by the directory given to SetSearchDir.
func LibrarySearchPaths() []string {
	var paths []string
	if searchDir != "" {
		paths = append(paths, searchDir)
	}

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/opt/ffmpeg@5/lib",
			"/usr/local/opt/ffmpeg@5/lib",
			"/opt/homebrew/opt/ffmpeg@4/lib",
			"/usr/local/opt/ffmpeg@4/lib",
			"/opt/homebrew/lib",
			"/usr/local/lib",
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			"C:\\ffmpeg\\bin",
			"C:\\Program Files\\ffmpeg\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// LibAVUtil returns the avutil library handle.
func LibAVUtil() uintptr {
	return libAVUtil
}

package viewer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LargeFileSize is the size above which loading only warns.
const LargeFileSize = 100 << 20

// Path check failures. Any of them sends the viewer to demo mode.
var (
	ErrUnsupportedExtension = errors.New("not a .gltf or .glb file")
	ErrFileNotFound         = errors.New("file not found")
	ErrIsDirectory          = errors.New("path is a directory")
	ErrEmptyFile            = errors.New("file is empty")
)

// CheckPath validates a model path before loading and returns it cleaned
// and absolute.
func CheckPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".gltf" && ext != ".glb" {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedExtension)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("%s: %w", abs, ErrFileNotFound)
	case err != nil:
		return "", fmt.Errorf("%s: %w", abs, err)
	case info.IsDir():
		return "", fmt.Errorf("%s: %w", abs, ErrIsDirectory)
	case info.Size() == 0:
		return "", fmt.Errorf("%s: %w", abs, ErrEmptyFile)
	}

	if info.Size() > LargeFileSize {
		log().Warn("large model file, loading may take a while",
			zap.String("path", abs),
			zap.Int64("sizeMB", info.Size()>>20),
		)
	}
	return abs, nil
}

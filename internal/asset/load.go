package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// Load errors.
var (
	ErrContainerMismatch = errors.New("file content does not match its extension")
	ErrEmptyFile         = errors.New("file is empty")
)

// glbMagic opens every binary glTF container.
var glbMagic = []byte("glTF")

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Warnings are non-fatal findings of a load.
type Warnings []string

// IsBinary reports whether path names a binary container. Anything that is
// not .glb is treated as text.
func IsBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}

// Load decodes the document at path. The container is selected by suffix;
// a file whose content disagrees with its suffix is a parse error.
// On error no document is returned.
func Load(path string) (*Document, Warnings, error) {
	if err := checkContainer(path); err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}

	src, err := gltf.Open(path)
	if err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}

	doc := fromDecoded(src)
	doc.Path = path
	return doc, collectWarnings(src), nil
}

func checkContainer(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, len(glbMagic))
	n, err := io.ReadFull(f, head)
	if n == 0 {
		if err == io.EOF {
			return ErrEmptyFile
		}
		return err
	}

	binary := n == len(glbMagic) && bytes.Equal(head, glbMagic)
	if IsBinary(path) != binary {
		if binary {
			return fmt.Errorf("%w: binary container in text file", ErrContainerMismatch)
		}
		return fmt.Errorf("%w: missing glTF magic", ErrContainerMismatch)
	}
	return nil
}

func collectWarnings(src *gltf.Document) Warnings {
	var w Warnings
	for _, ext := range src.ExtensionsRequired {
		w = append(w, fmt.Sprintf("required extension %q is not supported", ext))
	}
	if n := len(src.Animations); n > 0 {
		w = append(w, fmt.Sprintf("%d animation(s) ignored", n))
	}
	if n := len(src.Skins); n > 0 {
		w = append(w, fmt.Sprintf("%d skin(s) ignored", n))
	}
	if n := len(src.Textures); n > 0 {
		w = append(w, fmt.Sprintf("%d texture(s) ignored, drawing base color only", n))
	}
	for mi, m := range src.Meshes {
		if m == nil {
			continue
		}
		for pi, p := range m.Primitives {
			if p != nil && len(p.Targets) > 0 {
				w = append(w, fmt.Sprintf("mesh %d primitive %d: morph targets ignored", mi, pi))
			}
		}
	}
	return w
}

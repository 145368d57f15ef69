package window

import (
	"errors"

	"github.com/sqweek/dialog"
)

// OpenModelDialog shows a native file picker for glTF files and returns
// the chosen path, or "" if the user cancelled. It blocks, so callers run
// it off the render thread.
func OpenModelDialog(startDir string) (string, error) {
	b := dialog.File().
		Filter("glTF Models", "gltf", "glb").
		Filter("All Files", "*").
		Title("Open glTF Model")
	if startDir != "" {
		b = b.SetStartDir(startDir)
	}
	path, err := b.Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	return path, err
}

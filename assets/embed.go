package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.png
var FS embed.FS

// Dir is the on-disk asset directory that overrides the embedded files.
const Dir = "assets"

// Overlay reads a file from dir first and falls back to the embedded copy.
type Overlay struct {
	Dir string
}

func (o Overlay) Open(name string) (fs.File, error) {
	clean := cleanAssetPath(name)
	if o.Dir != "" {
		if f, err := os.Open(filepath.Join(o.Dir, filepath.FromSlash(clean))); err == nil {
			return f, nil
		}
	}
	return FS.Open(clean)
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}

package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Loader turns a texture name into an uploaded texture.
type Loader interface {
	Load(name string) (Texture, error)
}

// UploadFunc moves a decoded image to wherever textures live.
type UploadFunc func(image.Image) Texture

// FSLoader decodes images from a file system.
type FSLoader struct {
	FS     fs.FS
	Upload UploadFunc
}

// NewLoader creates a loader reading from fsys. A nil upload keeps images on
// the CPU as ImageTexture.
func NewLoader(fsys fs.FS, upload UploadFunc) *FSLoader {
	return &FSLoader{FS: fsys, Upload: upload}
}

// Load decodes name from the loader file system, trying the name as given,
// under assets/ and then its base name.
func (l *FSLoader) Load(name string) (Texture, error) {
	if name == "" {
		return nil, fmt.Errorf("empty texture name")
	}
	if l == nil || l.FS == nil {
		return nil, fmt.Errorf("load %s: no file system", name)
	}

	clean := cleanTexturePath(name)
	tried := []string{clean, path.Join("assets", clean), path.Base(clean)}
	var lastErr error
	for _, p := range tried {
		b, err := fs.ReadFile(l.FS, p)
		if err != nil {
			lastErr = err
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		if l.Upload == nil {
			return ImageTexture{Image: img}, nil
		}
		tex := l.Upload(img)
		if tex == nil {
			return nil, fmt.Errorf("upload %s: no texture", p)
		}
		return tex, nil
	}
	return nil, fmt.Errorf("failed to load image %s: %w", name, lastErr)
}

func cleanTexturePath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "./")
	s = strings.TrimLeft(s, "/")
	return path.Clean(s)
}

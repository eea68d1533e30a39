package resource

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture records the dimensions of an image. GPU upload and mipmaps belong
// to the renderer.
type Texture struct {
	Path   string
	Width  int
	Height int
	Format string
}

func loadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Texture{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

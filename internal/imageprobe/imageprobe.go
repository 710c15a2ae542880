// Package imageprobe reads image dimensions from the leading bytes of an encoded file.
package imageprobe

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Result is what a probe found.
type Result struct {
	Format string
	Width  int
	Height int
}

// String renders the dimensions as WxH.
func (r Result) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Probe decodes only the image header, so a prefix of the file is enough for most formats.
func Probe(prefix []byte) (Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(prefix))
	if err != nil {
		return Result{}, fmt.Errorf("probe image: %w", err)
	}

	return Result{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

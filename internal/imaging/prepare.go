// Package imaging turns uploaded photos and rendered pages into images the
// extraction model accepts.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/workorders-tracker/internal/llm"
)

const (
	DefaultMaxDimension = 2048
	jpegQuality         = 90
)

// Preparer decodes, orients and downsizes images.
type Preparer struct {
	MaxDimension int
	logger       *slog.Logger
}

func NewPreparer(maxDimension int, logger *slog.Logger) *Preparer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preparer{MaxDimension: maxDimension, logger: logger}
}

// Prepare returns an image no larger than MaxDimension on either side.
// JPEG and PNG input already within bounds is passed through byte for byte;
// anything else is decoded with EXIF orientation applied and re-encoded as JPEG.
func (p *Preparer) Prepare(name string, data []byte) (llm.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode %s: %w", name, err)
	}

	withinBounds := cfg.Width <= p.MaxDimension && cfg.Height <= p.MaxDimension
	if withinBounds && (format == "jpeg" || format == "png") {
		return llm.Image{Name: name, MIMEType: "image/" + format, Data: data}, nil
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode %s: %w", name, err)
	}

	img := src
	if !withinBounds {
		img = imaging.Fit(src, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return llm.Image{}, fmt.Errorf("encode %s: %w", name, err)
	}

	b := img.Bounds()
	p.logger.Debug("imaging.prepared",
		"name", name,
		"format", format,
		"src_w", cfg.Width, "src_h", cfg.Height,
		"out_w", b.Dx(), "out_h", b.Dy(),
		"bytes", buf.Len(),
	)
	return llm.Image{Name: name, MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

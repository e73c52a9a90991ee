// Package textextract turns uploaded receipt files into plain text. PDFs are
// read through their embedded text layer; images go through a configurable
// recognition engine (local Tesseract, or a vision model for low-quality
// photos). The package only recognizes text: interpreting it is the parser's
// job.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// Provider extracts the recognizable text of one file on disk.
type Provider interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ErrUnsupportedFile is returned for file types no engine can read.
var ErrUnsupportedFile = errors.New("unsupported file type")

// imageExts lists the raster formats the image engines accept.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

// Selector routes a file to the right engine by extension.
type Selector struct {
	pdf   Provider
	image Provider
}

// New builds a Selector from the extraction config. The image engine is
// chosen by cfg.Engine; PDFs always use the embedded text layer.
func New(cfg models.ExtractionConfig) (*Selector, error) {
	var (
		image Provider
		err   error
	)
	switch cfg.Engine {
	case "", "tesseract":
		image = NewTesseract(cfg.Language)
	case "gemini":
		image, err = NewGemini(cfg.Gemini)
	case "openai":
		image = NewOpenAI(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown extraction engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, fmt.Errorf("building %s engine: %w", cfg.Engine, err)
	}
	return &Selector{pdf: NewPDF(), image: image}, nil
}

// Supported reports whether a filename has an extension some engine can read.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pdf" || imageExts[ext]
}

func (s *Selector) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return s.pdf.ExtractText(ctx, path)
	case imageExts[ext]:
		return s.image.ExtractText(ctx, path)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
}

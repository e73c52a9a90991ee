package textextract

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// maxDimension caps the longest image side before recognition. Larger photos
// slow Tesseract down without improving accuracy.
const maxDimension = 2000

// preprocessImage enhances a receipt photo for recognition: downscale,
// grayscale, contrast stretch, light sharpen. The result is written to a
// temporary PNG the caller must remove.
func preprocessImage(path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 15)
	img = imaging.Sharpen(img, 0.8)

	out, err := os.CreateTemp("", "receipt-prep-*.png")
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := imaging.Encode(out, img, imaging.PNG); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("encoding image: %w", err)
	}
	return out.Name(), nil
}

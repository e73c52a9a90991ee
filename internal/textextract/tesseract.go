package textextract

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs local OCR through the libtesseract bindings. The image is
// preprocessed first; when preprocessing fails the original file is used
// as-is rather than failing the whole extraction.
type Tesseract struct {
	language string
}

// NewTesseract builds the local engine. language is a tesseract language
// spec, "+"-joined for multilingual receipts.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng+spa"
	}
	return &Tesseract{language: language}
}

func (t *Tesseract) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	input := path
	if prepared, err := preprocessImage(path); err == nil {
		input = prepared
		defer os.Remove(prepared)
	} else {
		log.Printf("[textextract] preprocess failed, using original image: %v", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return "", fmt.Errorf("setting language %q: %w", t.language, err)
	}
	if err := client.SetImage(input); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

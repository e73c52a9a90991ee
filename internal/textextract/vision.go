package textextract

import (
	"path/filepath"
	"strings"
)

// transcribePrompt asks a vision model for a faithful transcription. The
// model must not interpret the receipt; all field extraction happens locally.
const transcribePrompt = `Transcribe ALL visible text from this receipt or invoice image.

Rules:
- Output the text exactly as printed, preserving the line structure.
- Keep every number, currency symbol and punctuation mark as-is.
- Do not translate, summarize, interpret or reorder anything.
- Do not add commentary, labels or markdown. Output plain text only.`

// imageFormat maps a filename to the format tag vision APIs expect.
func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	default:
		return "png"
	}
}

// stripFences removes a markdown code fence a model may wrap its output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const (
	// DefaultTesseractBinary is looked up on PATH.
	DefaultTesseractBinary = "tesseract"
	// DefaultTimeout bounds a single recognition call.
	DefaultTimeout = 2 * time.Minute
)

// TesseractEngine drives a tesseract subprocess and decodes its TSV output.
// The OCR process itself is a black box; this adapter only owns the call
// and its timeout.
type TesseractEngine struct {
	Binary   string
	Language string
	Timeout  time.Duration
}

// NewTesseractEngine creates an engine with the given binary and language,
// falling back to defaults for empty values.
func NewTesseractEngine(binary, language string, timeout time.Duration) *TesseractEngine {
	if binary == "" {
		binary = DefaultTesseractBinary
	}
	if language == "" {
		language = "eng"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TesseractEngine{Binary: binary, Language: language, Timeout: timeout}
}

// Recognize runs tesseract on the given image and returns its pages of
// words. The call is bounded by the engine timeout; expiry kills the
// subprocess and returns the context error.
func (e *TesseractEngine) Recognize(ctx context.Context, path string) ([]Page, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Binary, path, "stdout", "-l", e.Language, "tsv")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tesseract timed out on %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("tesseract failed on %s: %w (%s)", path, err, stderr.String())
	}

	pages, err := ParseTSV(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding tesseract output for %s: %w", path, err)
	}
	return pages, nil
}

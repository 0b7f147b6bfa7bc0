// Package extract is the text extraction boundary. The parsing core
// never sees raw document bytes; it receives extracted text from an
// Extractor, and extraction failures are fatal for that document only.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ExtractionError reports that no text could be obtained from a document
// (encrypted, corrupted, or image-only with no text layer).
type ExtractionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor obtains statement text from a document on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PDFToText extracts text via the pdftotext binary with layout
// preservation, which keeps transaction columns on one line.
type PDFToText struct{}

func (PDFToText) Extract(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: "pdftotext failed", Err: err}
	}

	text := string(output)
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Path: path, Reason: "no extractable text layer"}
	}
	return text, nil
}

// PDFUpload extracts text from an in-flight PDF upload. pdftotext wants
// a file on disk, so the stream is spooled to a temp file first.
func PDFUpload(ctx context.Context, name string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", &ExtractionError{Path: name, Reason: "create temp file", Err: err}
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", &ExtractionError{Path: name, Reason: "spool upload", Err: err}
	}

	text, err := PDFToText{}.Extract(ctx, tmp.Name())
	if err != nil {
		var extErr *ExtractionError
		if errors.As(err, &extErr) {
			extErr.Path = name
		}
		return "", err
	}
	return text, nil
}

// Plain reads the document as already-extracted UTF-8 text. Used by the
// CLI for .txt inputs and by tests.
type Plain struct{}

func (Plain) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: "read failed", Err: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", &ExtractionError{Path: path, Reason: "empty document"}
	}
	return string(data), nil
}

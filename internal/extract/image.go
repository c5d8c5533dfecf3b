package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Image is an invoice image resource: raw bytes plus a MIME type. Path is
// kept for error reporting and may be empty for inline uploads.
type Image struct {
	Path string
	Data []byte
	MIME string
}

// NotFoundError reports a missing image resource. Raised before any external
// call is made.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image not found: %s", e.Path)
}

// ExtractionError wraps a failed extraction call. Fatal to the whole
// evaluation, unlike judge failures.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract invoice text: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// LoadImage reads an image from disk, guessing the MIME type from the file
// extension and falling back to content sniffing.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Image{}, &NotFoundError{Path: path}
	}
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return Image{
		Path: path,
		Data: data,
		MIME: mimeType,
	}, nil
}

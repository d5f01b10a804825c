// Package render turns a ReportModel into a finished, paginated document.
// Renderers own no business logic and perform no network I/O: everything
// they need is already on the model.
package render

import (
	"encoding/base64"
	"fmt"

	"alert-reporting/internal/report/domain"
)

// Renderer produces a document from a fully built report model.
// Rendering is deterministic for a given model.
type Renderer interface {
	Render(model *domain.ReportModel) ([]byte, error)
	ContentType() string
	Filename() string
}

// Error marks a renderer failure on a well-formed model. Surfaced as an
// internal error: it indicates a renderer contract violation, not bad input.
type Error struct {
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func renderError(format string, err error) error {
	return &Error{Format: format, Err: err}
}

func decodeImage(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode embedded image: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode embedded image: empty")
	}
	return raw, nil
}

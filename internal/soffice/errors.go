package soffice

import "fmt"

// ConversionError represents a converter subprocess failure.
type ConversionError struct {
	Filter string
	Stderr string
	Err    error
	Hint   string
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("conversion failed: %v", e.Err)
	if e.Filter != "" {
		msg += fmt.Sprintf(" (filter: %s)", e.Filter)
	}
	if e.Stderr != "" {
		stderr := e.Stderr
		if len(stderr) > 500 {
			stderr = stderr[:500] + "..."
		}
		msg += fmt.Sprintf("\nstderr: %s", stderr)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// BinaryNotFoundError indicates the converter binary is missing from the
// execution environment. This is a fatal precondition, not something the
// service can work around.
type BinaryNotFoundError struct {
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("converter binary not found: %s (install LibreOffice or set SOFFICE_PATH)", e.Path)
}

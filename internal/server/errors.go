package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError represents a client-caused request failure: missing
// upload, disallowed extension, empty workbook. Reported before any
// workspace is created or subprocess invoked.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// uploadStatus maps a readUpload failure to its HTTP status: client
// validation failures are 400, read/transport failures 500.
func uploadStatus(err error) int {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package server

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "file", Reason: "no file attached"}
	assert.Equal(t, "invalid file: no file attached", err.Error())
}

func TestUploadStatus(t *testing.T) {
	t.Run("validation failures are client errors", func(t *testing.T) {
		err := &ValidationError{Field: "file", Reason: "no file attached"}
		assert.Equal(t, http.StatusBadRequest, uploadStatus(err))
	})

	t.Run("wrapped validation failures are client errors", func(t *testing.T) {
		err := fmt.Errorf("upload: %w", &ValidationError{Field: "file", Reason: "upload too large or malformed multipart form"})
		assert.Equal(t, http.StatusBadRequest, uploadStatus(err))
	})

	t.Run("read failures are server errors", func(t *testing.T) {
		err := fmt.Errorf("read upload: %w", io.ErrUnexpectedEOF)
		assert.Equal(t, http.StatusInternalServerError, uploadStatus(err))
	})
}

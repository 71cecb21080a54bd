package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/previewkit/convertd/internal/cache"
	"github.com/previewkit/convertd/internal/soffice"
	"github.com/previewkit/convertd/internal/workbook"
	"github.com/previewkit/convertd/internal/workspace"
)

// convertExts is the upload allow-list for /convert: word-processing,
// spreadsheet, presentation, plain-text, and PDF extensions.
var convertExts = map[string]bool{
	".doc":  true,
	".docx": true,
	".odt":  true,
	".rtf":  true,
	".txt":  true,
	".xls":  true,
	".xlsx": true,
	".xlsm": true,
	".ods":  true,
	".csv":  true,
	".ppt":  true,
	".pptx": true,
	".odp":  true,
	".pdf":  true,
}

// handleConvert handles POST /convert: single office document in, PDF out.
//
// received → validated → cache-checked → (hit: respond) | (miss:
// workspace → write → [normalize] → convert → locate → read → cache →
// respond). The workspace is destroyed on every exit path.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	start := time.Now()
	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()
	defer func() {
		s.metrics.Duration.WithLabelValues("convert").Observe(time.Since(start).Seconds())
	}()

	data, filename, err := s.readUpload(w, r)
	if err != nil {
		status := uploadStatus(err)
		if status == http.StatusBadRequest {
			s.metrics.Conversions.WithLabelValues("convert", "rejected").Inc()
		} else {
			s.metrics.Conversions.WithLabelValues("convert", "failed").Inc()
		}
		http.Error(w, err.Error(), status)
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !convertExts[ext] {
		s.metrics.Conversions.WithLabelValues("convert", "rejected").Inc()
		http.Error(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	key := cache.Key(data)
	if result, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Inc()
		s.metrics.Conversions.WithLabelValues("convert", "success").Inc()
		s.logger.InfoContext(ctx, "conversion served from cache",
			"hash", key[:12],
			"ext", ext,
			"size", len(data),
		)
		s.respondPDF(w, filename, result)
		return
	}
	s.metrics.CacheMisses.Inc()

	result, err := s.convertToPDF(ctx, data, ext)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("convert", "failed").Inc()
		s.logger.ErrorContext(ctx, "conversion failed",
			"error", err,
			"hash", key[:12],
			"ext", ext,
		)
		http.Error(w, "Convert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.cache.Put(key, result)
	s.metrics.Conversions.WithLabelValues("convert", "success").Inc()
	s.logger.InfoContext(ctx, "conversion complete",
		"hash", key[:12],
		"ext", ext,
		"size", len(data),
		"pdf_size", len(result),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.respondPDF(w, filename, result)
}

// convertToPDF runs the cache-miss path inside a scoped workspace.
func (s *Server) convertToPDF(ctx context.Context, data []byte, ext string) ([]byte, error) {
	ws, err := s.workspaces.Acquire()
	if err != nil {
		return nil, err
	}
	defer ws.Release()

	if workbook.IsSpreadsheetExt(ext) {
		normalized, err := workbook.NormalizeForPDF(data, ext)
		if err != nil {
			// Normalization must never abort the conversion:
			// fall back to the original bytes.
			s.logger.WarnContext(ctx, "spreadsheet normalization failed, converting original",
				"error", err,
				"ext", ext,
			)
		} else {
			data = normalized
		}
	}

	inputPath, err := ws.WriteFile("input"+ext, data)
	if err != nil {
		return nil, err
	}

	spec := soffice.PDFFilterFor(ext)
	if err := s.converter.ConvertToPDF(ctx, inputPath, ws.Path, spec); err != nil {
		return nil, err
	}

	outName, err := locatePDF(ws)
	if err != nil {
		return nil, err
	}
	result, err := ws.ReadFile(outName)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, errors.New("converter produced an empty output file")
	}
	return result, nil
}

// locatePDF finds the converter's output: the input's base name with a
// .pdf extension, or failing that any .pdf in the workspace. The
// fallback is permissive; it is safe only while each workspace holds a
// single input file.
func locatePDF(ws *workspace.Workspace) (string, error) {
	const preferred = "input.pdf"
	entries, err := ws.List()
	if err != nil {
		return "", err
	}
	fallback := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == preferred {
			return name, nil
		}
		if fallback == "" && strings.HasSuffix(strings.ToLower(name), ".pdf") {
			fallback = name
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errors.New("converter produced no PDF output")
}

func (s *Server) respondPDF(w http.ResponseWriter, filename string, pdf []byte) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", base+".pdf"))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// readUpload caps and parses the multipart upload, returning the file
// bytes and original filename.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return nil, "", &ValidationError{Field: "file", Reason: "upload too large or malformed multipart form"}
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", &ValidationError{Field: "file", Reason: "no file attached"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, hdr.Filename, nil
}

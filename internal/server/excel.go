package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/previewkit/convertd/internal/workbook"
	"github.com/previewkit/convertd/internal/workspace"
)

// excelResponse is the /convert-excel success body.
type excelResponse struct {
	Sheets map[string]string `json:"sheets"`
}

// handleConvertExcel handles POST /convert-excel: a spreadsheet upload
// is split into single-sheet workbooks, each exported to HTML with its
// assets inlined, and returned as a name→HTML mapping.
//
// Any per-sheet failure aborts the whole request; no partial results
// are returned.
func (s *Server) handleConvertExcel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	start := time.Now()
	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()
	defer func() {
		s.metrics.Duration.WithLabelValues("convert-excel").Observe(time.Since(start).Seconds())
	}()

	data, filename, err := s.readUpload(w, r)
	if err != nil {
		status := uploadStatus(err)
		if status == http.StatusBadRequest {
			s.metrics.Conversions.WithLabelValues("convert-excel", "rejected").Inc()
		} else {
			s.metrics.Conversions.WithLabelValues("convert-excel", "failed").Inc()
		}
		writeJSONError(w, status, err.Error())
		return
	}

	// This route has to parse the workbook itself, so it is restricted
	// to the OOXML spreadsheet formats the parser supports.
	ext := strings.ToLower(filepath.Ext(filename))
	if !workbook.CanParse(ext) {
		s.metrics.Conversions.WithLabelValues("convert-excel", "rejected").Inc()
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported spreadsheet type: %s (sheet export requires an OOXML workbook: .xlsx, .xlsm, .xltx, .xltm)", ext))
		return
	}

	names, err := workbook.SheetNames(data)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("convert-excel", "rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "could not read workbook: "+err.Error())
		return
	}
	if len(names) == 0 {
		s.metrics.Conversions.WithLabelValues("convert-excel", "rejected").Inc()
		writeJSONError(w, http.StatusBadRequest, "workbook has no sheets")
		return
	}

	display := workbook.DisplayNames(names)
	sheets := make(map[string]string, len(names))
	for i, name := range names {
		html, err := s.convertSheetToHTML(ctx, data, name)
		if err != nil {
			s.metrics.Conversions.WithLabelValues("convert-excel", "failed").Inc()
			s.logger.ErrorContext(ctx, "sheet conversion failed",
				"error", err,
				"sheet", name,
			)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sheets[display[i]] = html
	}

	s.metrics.Conversions.WithLabelValues("convert-excel", "success").Inc()
	s.logger.InfoContext(ctx, "spreadsheet exported",
		"sheets", len(sheets),
		"size", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(excelResponse{Sheets: sheets})
}

// convertSheetToHTML isolates one sheet into its own workbook and
// workspace, exports it to HTML, and inlines the produced assets.
func (s *Server) convertSheetToHTML(ctx context.Context, data []byte, sheet string) (string, error) {
	single, err := workbook.ExtractSheet(data, sheet)
	if err != nil {
		return "", err
	}

	normalized, err := workbook.NormalizeForPDF(single, ".xlsx")
	if err != nil {
		s.logger.WarnContext(ctx, "sheet normalization failed, exporting original",
			"error", err,
			"sheet", sheet,
		)
	} else {
		single = normalized
	}

	ws, err := s.sheets.Acquire()
	if err != nil {
		return "", err
	}
	defer ws.Release()

	inputPath, err := ws.WriteFile("sheet.xlsx", single)
	if err != nil {
		return "", err
	}

	if err := s.converter.ConvertToHTML(ctx, inputPath, ws.Path); err != nil {
		return "", err
	}

	outName, err := locateHTML(ws)
	if err != nil {
		return "", err
	}
	htmlBytes, err := ws.ReadFile(outName)
	if err != nil {
		return "", err
	}

	return s.inliner.Inline(ctx, string(htmlBytes), ws.Path), nil
}

// locateHTML mirrors locatePDF for the HTML export path.
func locateHTML(ws *workspace.Workspace) (string, error) {
	const preferred = "sheet.html"
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
		if fallback == "" && strings.HasSuffix(strings.ToLower(name), ".html") {
			fallback = name
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("converter produced no HTML output")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

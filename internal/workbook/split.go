package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetNames returns the workbook's sheet names in workbook order.
func SheetNames(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ExtractSheet returns a copy of the workbook containing only the named
// sheet, so the HTML export path converts exactly one sheet per call.
func ExtractSheet(data []byte, keep string) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	found := false
	for _, sheet := range f.GetSheetList() {
		if sheet == keep {
			found = true
			continue
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return nil, fmt.Errorf("delete sheet %q: %w", sheet, err)
		}
	}
	if !found {
		return nil, fmt.Errorf("sheet %q not in workbook", keep)
	}

	idx, err := f.GetSheetIndex(keep)
	if err != nil {
		return nil, fmt.Errorf("index sheet %q: %w", keep, err)
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// DisplayNames maps raw sheet names to the unique display names used as
// response keys. Blank names become "Sheet N" (1-indexed position);
// collisions get " (2)", " (3)", ... appended until unique.
func DisplayNames(names []string) []string {
	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		base := strings.TrimSpace(name)
		if base == "" {
			base = fmt.Sprintf("Sheet %d", i+1)
		}
		candidate := base
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s (%d)", base, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// Package workbook rewrites spreadsheet print-layout metadata before
// conversion and splits workbooks into single-sheet copies for the
// per-sheet HTML export path.
package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Extensions the OOXML parser can open. Legacy binary (.xls) and ODF
// (.ods) spreadsheets pass through normalization unchanged; the
// converter-level SinglePageSheets option still applies to them.
var ooxmlExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

var spreadsheetExts = map[string]bool{
	".xls":  true,
	".xlsx": true,
	".xlsm": true,
	".ods":  true,
	".csv":  true,
}

// IsSpreadsheetExt reports whether ext names a spreadsheet format.
func IsSpreadsheetExt(ext string) bool {
	return spreadsheetExts[strings.ToLower(ext)]
}

// CanParse reports whether ext names a workbook format this package can
// open and rewrite.
func CanParse(ext string) bool {
	return ooxmlExts[strings.ToLower(ext)]
}

// NormalizeForPDF rewrites a workbook so PDF export yields one page per
// sheet: workbook-level print-area and print-title names are dropped
// (they override per-sheet scale-to-fit), every sheet is forced to
// fit-to-width=1 / fit-to-height=1 in landscape, and explicit scale,
// header/footer, and margin overrides are cleared.
//
// Formats the parser cannot open are returned unchanged. Callers treat
// any error as non-fatal and convert the original bytes instead.
func NormalizeForPDF(data []byte, ext string) ([]byte, error) {
	if !CanParse(ext) {
		return data, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := stripPrintNames(f); err != nil {
		return nil, err
	}

	for _, sheet := range f.GetSheetList() {
		if err := normalizeSheet(f, sheet); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// stripPrintNames removes defined names whose name contains "print_area"
// or "print_titles", case-insensitive.
func stripPrintNames(f *excelize.File) error {
	for _, dn := range f.GetDefinedName() {
		name := strings.ToLower(dn.Name)
		if !strings.Contains(name, "print_area") && !strings.Contains(name, "print_titles") {
			continue
		}
		err := f.DeleteDefinedName(&excelize.DefinedName{Name: dn.Name, Scope: dn.Scope})
		if err != nil {
			return fmt.Errorf("delete defined name %q: %w", dn.Name, err)
		}
	}
	return nil
}

func normalizeSheet(f *excelize.File, sheet string) error {
	// fitToWidth/fitToHeight only take effect with the fit-to-page
	// sheet property set.
	fitToPage := true
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return fmt.Errorf("set sheet props: %w", err)
	}

	landscape := "landscape"
	one := 1
	fullScale := uint(100)
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Orientation: &landscape,
		AdjustTo:    &fullScale,
		FitToWidth:  &one,
		FitToHeight: &one,
	}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}

	// Reset any explicit margin overrides to the format defaults.
	left, right := 0.7, 0.7
	top, bottom := 0.75, 0.75
	header, footer := 0.3, 0.3
	if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Left:   &left,
		Right:  &right,
		Top:    &top,
		Bottom: &bottom,
		Header: &header,
		Footer: &footer,
	}); err != nil {
		return fmt.Errorf("set page margins: %w", err)
	}

	if err := f.SetHeaderFooter(sheet, &excelize.HeaderFooterOptions{}); err != nil {
		return fmt.Errorf("clear header/footer: %w", err)
	}
	return nil
}

package soffice

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterOption is a single FilterData key/value pair. Options keep the
// order they were provided in; the converter's filter grammar is
// order-sensitive in its serialized form.
type FilterOption struct {
	Key   string
	Value any
}

// FilterSpec describes the --convert-to argument: target extension,
// export filter name, and filter-specific options.
type FilterSpec struct {
	// Extension is the target file extension, e.g. "pdf" or "html".
	Extension string
	// Name selects the export filter, e.g. "calc_pdf_Export".
	// Empty lets the converter pick its default for the extension.
	Name string
	// Data holds FilterData options passed inline within the spec.
	Data []FilterOption
}

// String serializes the spec into the converter's filter-argument
// grammar: `ext[:FilterName[:FilterData={'key':value,...}]]`. String
// values are single-quoted, numbers and booleans are bare. The output
// must match the converter's expectations byte-for-byte; wrong quoting
// silently changes which options are honored.
func (s FilterSpec) String() string {
	var b strings.Builder
	b.WriteString(s.Extension)
	if s.Name != "" {
		b.WriteByte(':')
		b.WriteString(s.Name)
	}
	if len(s.Data) > 0 {
		b.WriteString(":FilterData={")
		for i, opt := range s.Data {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('\'')
			b.WriteString(opt.Key)
			b.WriteString("':")
			b.WriteString(formatFilterValue(opt.Value))
		}
		b.WriteByte('}')
	}
	return b.String()
}

func formatFilterValue(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + val + "'"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// DocumentClass is the converter application family an input opens in.
type DocumentClass int

const (
	ClassWriter DocumentClass = iota
	ClassCalc
	ClassImpress
	ClassOther
)

var classByExt = map[string]DocumentClass{
	".doc":  ClassWriter,
	".docx": ClassWriter,
	".odt":  ClassWriter,
	".rtf":  ClassWriter,
	".txt":  ClassWriter,
	".xls":  ClassCalc,
	".xlsx": ClassCalc,
	".xlsm": ClassCalc,
	".ods":  ClassCalc,
	".csv":  ClassCalc,
	".ppt":  ClassImpress,
	".pptx": ClassImpress,
	".odp":  ClassImpress,
}

// Classify maps a file extension (with leading dot, any case) to its
// document class. Unknown extensions, including ".pdf", are ClassOther.
func Classify(ext string) DocumentClass {
	if class, ok := classByExt[strings.ToLower(ext)]; ok {
		return class
	}
	return ClassOther
}

// PDFFilterFor returns the PDF export spec for an input extension.
// Spreadsheets ask the converter for one page per sheet; together with
// the workbook normalization pass this yields predictable pagination.
func PDFFilterFor(ext string) FilterSpec {
	switch Classify(ext) {
	case ClassWriter:
		return FilterSpec{Extension: "pdf", Name: "writer_pdf_Export"}
	case ClassCalc:
		return FilterSpec{
			Extension: "pdf",
			Name:      "calc_pdf_Export",
			Data: []FilterOption{
				{Key: "SinglePageSheets", Value: true},
			},
		}
	case ClassImpress:
		return FilterSpec{Extension: "pdf", Name: "impress_pdf_Export"}
	default:
		return FilterSpec{Extension: "pdf"}
	}
}

// htmlFilterSpecs are the spreadsheet HTML export variants, in priority
// order. The first to succeed wins; if all fail the last error surfaces.
var htmlFilterSpecs = []FilterSpec{
	{Extension: "html", Name: "HTML (StarCalc)"},
	{Extension: "html"},
}

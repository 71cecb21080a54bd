package workbook

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetCellValue(name, "A1", name))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestIsSpreadsheetExt(t *testing.T) {
	assert.True(t, IsSpreadsheetExt(".xlsx"))
	assert.True(t, IsSpreadsheetExt(".XLS"))
	assert.True(t, IsSpreadsheetExt(".csv"))
	assert.False(t, IsSpreadsheetExt(".docx"))
	assert.False(t, IsSpreadsheetExt(""))
}

func TestCanParse(t *testing.T) {
	assert.True(t, CanParse(".xlsx"))
	assert.True(t, CanParse(".xlsm"))
	assert.False(t, CanParse(".xls"))
	assert.False(t, CanParse(".ods"))
	assert.False(t, CanParse(".csv"))
}

func TestNormalizeForPDF(t *testing.T) {
	t.Run("unparseable formats pass through unchanged", func(t *testing.T) {
		data := []byte("a,b,c\n1,2,3\n")
		got, err := NormalizeForPDF(data, ".csv")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("corrupt workbook returns an error", func(t *testing.T) {
		_, err := NormalizeForPDF([]byte("not a zip archive"), ".xlsx")
		assert.Error(t, err)
	})

	t.Run("strips print names and forces fit-to-page landscape", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName("Sheet1", "Data"))
		require.NoError(t, f.SetCellValue("Data", "A1", "v"))

		portrait := "portrait"
		half := uint(50)
		require.NoError(t, f.SetPageLayout("Data", &excelize.PageLayoutOptions{
			Orientation: &portrait,
			AdjustTo:    &half,
		}))
		require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
			Name:     "_xlnm.Print_Area",
			RefersTo: "Data!$A$1:$B$2",
			Scope:    "Data",
		}))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		require.NoError(t, f.Close())

		out, err := NormalizeForPDF(buf.Bytes(), ".xlsx")
		require.NoError(t, err)

		norm, err := excelize.OpenReader(bytes.NewReader(out))
		require.NoError(t, err)
		defer norm.Close()

		for _, dn := range norm.GetDefinedName() {
			assert.NotContains(t, dn.Name, "Print_Area")
		}

		layout, err := norm.GetPageLayout("Data")
		require.NoError(t, err)
		require.NotNil(t, layout.Orientation)
		assert.Equal(t, "landscape", *layout.Orientation)
		require.NotNil(t, layout.FitToWidth)
		assert.Equal(t, 1, *layout.FitToWidth)
		require.NotNil(t, layout.FitToHeight)
		assert.Equal(t, 1, *layout.FitToHeight)
		require.NotNil(t, layout.AdjustTo)
		assert.Equal(t, uint(100), *layout.AdjustTo)

		props, err := norm.GetSheetProps("Data")
		require.NoError(t, err)
		require.NotNil(t, props.FitToPage)
		assert.True(t, *props.FitToPage)
	})

	t.Run("normalizes every sheet", func(t *testing.T) {
		data := buildWorkbook(t, "First", "Second", "Third")

		out, err := NormalizeForPDF(data, ".xlsx")
		require.NoError(t, err)

		norm, err := excelize.OpenReader(bytes.NewReader(out))
		require.NoError(t, err)
		defer norm.Close()

		for _, sheet := range norm.GetSheetList() {
			layout, err := norm.GetPageLayout(sheet)
			require.NoError(t, err)
			require.NotNil(t, layout.Orientation, "sheet %s", sheet)
			assert.Equal(t, "landscape", *layout.Orientation, "sheet %s", sheet)
		}
	})
}

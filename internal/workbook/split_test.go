package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetNames(t *testing.T) {
	data := buildWorkbook(t, "Summary", "Details", "Raw")

	names, err := SheetNames(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Details", "Raw"}, names)
}

func TestSheetNames_Corrupt(t *testing.T) {
	_, err := SheetNames([]byte("garbage"))
	assert.Error(t, err)
}

func TestExtractSheet(t *testing.T) {
	data := buildWorkbook(t, "Summary", "Details", "Raw")

	t.Run("keeps only the requested sheet", func(t *testing.T) {
		single, err := ExtractSheet(data, "Details")
		require.NoError(t, err)

		names, err := SheetNames(single)
		require.NoError(t, err)
		assert.Equal(t, []string{"Details"}, names)
	})

	t.Run("original workbook is untouched", func(t *testing.T) {
		_, err := ExtractSheet(data, "Raw")
		require.NoError(t, err)

		names, err := SheetNames(data)
		require.NoError(t, err)
		assert.Len(t, names, 3)
	})

	t.Run("unknown sheet is an error", func(t *testing.T) {
		_, err := ExtractSheet(data, "Nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Nope")
	})
}

func TestDisplayNames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{
			name:  "plain names pass through",
			names: []string{"Summary", "Details"},
			want:  []string{"Summary", "Details"},
		},
		{
			name:  "blank name gets positional default",
			names: []string{"Summary", "  ", "Raw"},
			want:  []string{"Summary", "Sheet 2", "Raw"},
		},
		{
			name:  "collisions get numeric suffixes",
			names: []string{"Data", "Data", "Data"},
			want:  []string{"Data", "Data (2)", "Data (3)"},
		},
		{
			name:  "suffix itself may collide",
			names: []string{"Data", "Data (2)", "Data"},
			want:  []string{"Data", "Data (2)", "Data (3)"},
		},
		{
			name:  "blank names collide on their defaults",
			names: []string{"", "Sheet 1"},
			want:  []string{"Sheet 1", "Sheet 1 (2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayNames(tt.names))
		})
	}
}

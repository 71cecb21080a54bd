package inliner

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func TestInliner_Inline(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds local image as data uri", func(t *testing.T) {
		dir := t.TempDir()
		pixel := []byte{0x89, 0x50, 0x4e, 0x47}
		writeAsset(t, dir, "chart.png", pixel)

		html := `<img src="chart.png">`
		got := New().Inline(ctx, html, dir)

		want := `<img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(pixel) + `">`
		assert.Equal(t, want, got)
	})

	t.Run("duplicate references are all replaced", func(t *testing.T) {
		dir := t.TempDir()
		writeAsset(t, dir, "logo.gif", []byte("gifdata"))

		html := `<img src="logo.gif"><p>x</p><img src="logo.gif">`
		got := New().Inline(ctx, html, dir)

		assert.NotContains(t, got, `src="logo.gif"`)
		assert.Equal(t, 2, strings.Count(got, "data:image/gif;base64,"))
	})

	t.Run("remote and data references are untouched", func(t *testing.T) {
		dir := t.TempDir()
		html := `<img src="https://example.com/a.png"><img src="data:image/png;base64,AAAA"><img src="//cdn/b.png">`
		got := New().Inline(ctx, html, dir)
		assert.Equal(t, html, got)
	})

	t.Run("references escaping the base directory are untouched", func(t *testing.T) {
		dir := t.TempDir()
		html := `<img src="../../etc/passwd">`
		got := New().Inline(ctx, html, dir)
		assert.Equal(t, html, got)
	})

	t.Run("missing asset is left as-is", func(t *testing.T) {
		dir := t.TempDir()
		html := `<img src="absent.png">`
		got := New().Inline(ctx, html, dir)
		assert.Equal(t, html, got)
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		dir := t.TempDir()
		writeAsset(t, dir, "blob.bin", []byte{1, 2, 3})

		got := New().Inline(ctx, `<img src="blob.bin">`, dir)
		assert.Contains(t, got, "data:application/octet-stream;base64,")
	})

	t.Run("nested asset path", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sheet_files"), 0o755))
		writeAsset(t, filepath.Join(dir, "sheet_files"), "img001.jpg", []byte("jpeg"))

		got := New().Inline(ctx, `<img src="sheet_files/img001.jpg">`, dir)
		assert.Contains(t, got, "data:image/jpeg;base64,")
	})

	t.Run("html without references passes through", func(t *testing.T) {
		html := `<html><body><table><tr><td>42</td></tr></table></body></html>`
		got := New().Inline(ctx, html, t.TempDir())
		assert.Equal(t, html, got)
	})
}

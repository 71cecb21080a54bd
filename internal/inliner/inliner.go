// Package inliner post-processes converter-produced HTML, embedding
// local image references as base64 data URIs so the document has no
// external file dependencies.
package inliner

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// srcAttrPattern matches src attribute values. Substitution works by
// exact string match against the original attribute value, deliberately
// not a general HTML or URL parse: the rest of the document must pass
// through byte-for-byte.
var srcAttrPattern = regexp.MustCompile(`src="([^"]+)"`)

// absolutePrefixes mark references that are already self-contained or
// remote and must be left alone.
var absolutePrefixes = []string{"data:", "http:", "https:", "file:", "//"}

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

const fallbackMIME = "application/octet-stream"

// Inliner embeds local image assets referenced by an HTML document.
type Inliner struct {
	logger *slog.Logger
}

// New returns an Inliner with a discard logger.
func New() *Inliner {
	return &Inliner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithLogger sets a custom logger for the inliner.
func (in *Inliner) WithLogger(logger *slog.Logger) *Inliner {
	in.logger = logger
	return in
}

// Inline replaces every local image reference in html with a data URI
// embedding the asset found under baseDir. References that are remote,
// already data URIs, unreadable, or that resolve outside baseDir are
// left unchanged. Each distinct src value is substituted exactly once
// across the document, so duplicate occurrences stay consistent.
func (in *Inliner) Inline(ctx context.Context, html string, baseDir string) string {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		in.logger.WarnContext(ctx, "asset inlining skipped",
			"error", err,
			"base_dir", baseDir,
		)
		return html
	}

	seen := make(map[string]bool)
	for _, match := range srcAttrPattern.FindAllStringSubmatch(html, -1) {
		ref := match[1]
		if seen[ref] {
			continue
		}
		seen[ref] = true

		if isAbsoluteRef(ref) {
			continue
		}

		resolved := filepath.Clean(filepath.Join(absBase, filepath.FromSlash(ref)))
		if !strings.HasPrefix(resolved, absBase+string(os.PathSeparator)) {
			// Path-traversal guard: the reference escapes the
			// converter's output directory.
			in.logger.WarnContext(ctx, "asset reference rejected",
				"src", ref,
				"resolved", resolved,
			)
			continue
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			in.logger.DebugContext(ctx, "asset not readable, left as-is",
				"error", err,
				"src", ref,
			)
			continue
		}

		mime, ok := mimeByExt[strings.ToLower(filepath.Ext(resolved))]
		if !ok {
			mime = fallbackMIME
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		html = strings.ReplaceAll(html,
			`src="`+ref+`"`,
			`src="data:`+mime+`;base64,`+encoded+`"`,
		)
	}
	return html
}

func isAbsoluteRef(ref string) bool {
	for _, prefix := range absolutePrefixes {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}

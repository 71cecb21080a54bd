// Package soffice wraps invocation of a headless LibreOffice subprocess.
//
// All actual document rendering is delegated to the external binary; this
// package's job is argument construction, process lifecycle, and failure
// classification. The binary is an opaque, versioned external dependency
// whose invocation contract (flags, filter grammar, timeouts) is captured
// here precisely.
package soffice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/previewkit/convertd/internal/workspace"
)

// Config holds configuration for the Invoker.
type Config struct {
	// BinaryPath is the converter binary, resolved on PATH when relative.
	BinaryPath string
	// PDFTimeout bounds a single PDF conversion. Defaults to 60s.
	PDFTimeout time.Duration
	// HTMLTimeout bounds a single HTML export. Defaults to 90s.
	HTMLTimeout time.Duration
	// MaxConcurrent caps simultaneously running converter subprocesses.
	// Defaults to 4.
	MaxConcurrent int64
	// Profiles allocates the per-call user-profile directories HTML
	// exports run under.
	Profiles *workspace.Manager
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

// Invoker runs the headless converter. Each call spawns one subprocess;
// a weighted semaphore bounds how many may run at once so a burst of
// requests cannot exhaust the host.
type Invoker struct {
	binary      string
	pdfTimeout  time.Duration
	htmlTimeout time.Duration
	sem         *semaphore.Weighted
	profiles    *workspace.Manager
	logger      *slog.Logger
}

// New returns an Invoker configured from config.
func New(config Config) *Invoker {
	if config.BinaryPath == "" {
		config.BinaryPath = "soffice"
	}
	if config.PDFTimeout == 0 {
		config.PDFTimeout = 60 * time.Second
	}
	if config.HTMLTimeout == 0 {
		config.HTMLTimeout = 90 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Profiles == nil {
		if profiles, err := workspace.NewManager(workspace.Config{Logger: config.Logger}); err == nil {
			config.Profiles = profiles
		}
	}
	return &Invoker{
		binary:      config.BinaryPath,
		pdfTimeout:  config.PDFTimeout,
		htmlTimeout: config.HTMLTimeout,
		sem:         semaphore.NewWeighted(config.MaxConcurrent),
		profiles:    config.Profiles,
		logger:      config.Logger,
	}
}

// BinaryPath returns the configured converter binary.
func (inv *Invoker) BinaryPath() string {
	return inv.binary
}

// ConvertToPDF converts the file at inputPath, writing the result into
// outDir. The output file takes the input's base name with a .pdf
// extension; locating it is the caller's concern.
func (inv *Invoker) ConvertToPDF(ctx context.Context, inputPath, outDir string, spec FilterSpec) error {
	if err := inv.sem.Acquire(ctx, 1); err != nil {
		return &ConversionError{Filter: spec.String(), Err: err, Hint: "request cancelled before conversion started"}
	}
	defer inv.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, inv.pdfTimeout)
	defer cancel()

	return inv.run(ctx, spec, inputPath, outDir, nil)
}

// ConvertToHTML exports the spreadsheet at inputPath as HTML into outDir.
//
// Each call gets a fresh isolated user-profile directory, removed again
// regardless of outcome, so concurrent exports cannot trip over the
// converter's profile locking. Pre-existing HTML files in outDir are
// deleted first so a retry at the same path cannot pick up stale output.
// Filter variants are tried in fixed priority order; if all fail the
// last error is returned.
func (inv *Invoker) ConvertToHTML(ctx context.Context, inputPath, outDir string) error {
	if err := inv.sem.Acquire(ctx, 1); err != nil {
		return &ConversionError{Err: err, Hint: "request cancelled before conversion started"}
	}
	defer inv.sem.Release(1)

	if err := inv.removeStaleHTML(outDir); err != nil {
		return err
	}

	if inv.profiles == nil {
		return &ConversionError{Err: errors.New("no profile root available"), Hint: "could not allocate converter profile"}
	}
	profile, err := inv.profiles.Acquire()
	if err != nil {
		return &ConversionError{Err: err, Hint: "could not allocate converter profile"}
	}
	defer profile.Release()

	extraArgs := []string{"-env:UserInstallation=file://" + profile.Path}

	var lastErr error
	for _, spec := range htmlFilterSpecs {
		// Each filter variant gets the full timeout; a slow primary
		// must not starve the fallback.
		attemptCtx, cancel := context.WithTimeout(ctx, inv.htmlTimeout)
		err := inv.run(attemptCtx, spec, inputPath, outDir, extraArgs)
		cancel()
		if err != nil {
			lastErr = err
			inv.logger.WarnContext(ctx, "html export filter failed",
				"error", err,
				"filter", spec.String(),
			)
			continue
		}
		return nil
	}
	return lastErr
}

// run executes one converter invocation and classifies its failure.
func (inv *Invoker) run(ctx context.Context, spec FilterSpec, inputPath, outDir string, extraArgs []string) error {
	args := []string{"--headless", "--nologo", "--nofirststartwizard", "--nolockcheck"}
	args = append(args, extraArgs...)
	args = append(args, "--convert-to", spec.String(), inputPath, "--outdir", outDir)

	cmd := exec.CommandContext(ctx, inv.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	inv.logger.DebugContext(ctx, "converter invoked",
		"filter", spec.String(),
		"input", inputPath,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &ConversionError{
				Filter: spec.String(),
				Stderr: stderr.String(),
				Err:    ctx.Err(),
				Hint:   "conversion timed out",
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return &BinaryNotFoundError{Path: inv.binary}
		}
		return &ConversionError{
			Filter: spec.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}

// removeStaleHTML deletes any *.html left in outDir by a previous
// attempt at the same path.
func (inv *Invoker) removeStaleHTML(outDir string) error {
	stale, err := filepath.Glob(filepath.Join(outDir, "*.html"))
	if err != nil {
		return &ConversionError{Err: err, Hint: "could not scan output directory"}
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &ConversionError{Err: err, Hint: "could not remove stale html output"}
		}
	}
	return nil
}

// Package workspace provides per-request scratch directories with
// guaranteed best-effort cleanup.
//
// Every conversion gets its own uniquely named directory under a fixed
// scratch root. The directory holds the uploaded input and whatever the
// converter produces, and is removed recursively when the request ends,
// on every exit path. Cleanup failures are swallowed: a leaked directory
// must never change the outcome of the request that leaked it.
package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WorkspaceError represents a workspace allocation failure.
type WorkspaceError struct {
	Operation string
	Path      string
	Err       error
}

func (e *WorkspaceError) Error() string {
	msg := fmt.Sprintf("workspace error during %s", e.Operation)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// Config holds configuration for a workspace Manager.
type Config struct {
	// Root is the scratch directory all workspaces are created under.
	Root string
	// FileSystem defaults to the OS filesystem when nil.
	FileSystem FileSystem
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

// Manager allocates uniquely named scratch directories under a single root.
// Independent roots (per-request conversions, per-sheet jobs, converter
// profiles) each get their own Manager.
type Manager struct {
	root   string
	fs     FileSystem
	logger *slog.Logger
}

// NewManager creates a workspace manager and its root directory.
func NewManager(config Config) (*Manager, error) {
	if config.Root == "" {
		config.Root = filepath.Join(os.TempDir(), "convertd")
	}
	if config.FileSystem == nil {
		config.FileSystem = NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := config.FileSystem.MkdirAll(config.Root, 0o755); err != nil {
		return nil, &WorkspaceError{Operation: "create root", Path: config.Root, Err: err}
	}

	return &Manager{
		root:   config.Root,
		fs:     config.FileSystem,
		logger: config.Logger,
	}, nil
}

// Root returns the scratch root this manager allocates under.
func (m *Manager) Root() string {
	return m.root
}

// Sub returns a manager for a named sub-root beneath this manager's root,
// creating the directory if needed.
func (m *Manager) Sub(name string) (*Manager, error) {
	return NewManager(Config{
		Root:       filepath.Join(m.root, name),
		FileSystem: m.fs,
		Logger:     m.logger,
	})
}

// IsAccessible reports whether the scratch root exists.
func (m *Manager) IsAccessible() bool {
	info, err := m.fs.Stat(m.root)
	return err == nil && info.IsDir()
}

// Acquire creates a fresh uniquely named workspace directory.
// The caller must call Release when done, typically via defer, so the
// directory is removed on every exit path.
func (m *Manager) Acquire() (*Workspace, error) {
	id := uuid.New().String()
	path := filepath.Join(m.root, id)

	if err := m.fs.MkdirAll(path, 0o755); err != nil {
		return nil, &WorkspaceError{Operation: "create workspace", Path: path, Err: err}
	}

	m.logger.DebugContext(context.Background(), "workspace acquired",
		"id", id,
		"path", path,
	)

	return &Workspace{ID: id, Path: path, fs: m.fs, logger: m.logger}, nil
}

// Workspace is a scratch directory owned by a single request.
type Workspace struct {
	ID   string
	Path string

	fs     FileSystem
	logger *slog.Logger
}

// Release removes the workspace directory and everything in it.
// Removal is best-effort: failures are logged and swallowed so they can
// never mask the primary outcome of the enclosing request.
func (w *Workspace) Release() {
	if err := w.fs.RemoveAll(w.Path); err != nil {
		w.logger.WarnContext(context.Background(), "workspace cleanup failed",
			"error", err,
			"path", w.Path,
		)
	}
}

// Join returns the path of name inside the workspace.
func (w *Workspace) Join(name string) string {
	return filepath.Join(w.Path, name)
}

// WriteFile writes data to name inside the workspace and returns its path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := w.Join(name)
	if err := w.fs.WriteFile(path, data, 0o600); err != nil {
		return "", &WorkspaceError{Operation: "write input", Path: path, Err: err}
	}
	return path, nil
}

// ReadFile reads name from inside the workspace.
func (w *Workspace) ReadFile(name string) ([]byte, error) {
	path := w.Join(name)
	data, err := w.fs.ReadFile(path)
	if err != nil {
		return nil, &WorkspaceError{Operation: "read output", Path: path, Err: err}
	}
	return data, nil
}

// List returns the entries currently in the workspace.
func (w *Workspace) List() ([]os.FileInfo, error) {
	entries, err := w.fs.ReadDir(w.Path)
	if err != nil {
		return nil, &WorkspaceError{Operation: "list", Path: w.Path, Err: err}
	}
	return entries, nil
}

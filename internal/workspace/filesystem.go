package workspace

import (
	"os"

	"github.com/spf13/afero"
)

// FileSystem is the subset of filesystem operations a workspace needs.
// Backed by afero so tests can run against an in-memory filesystem.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	// ReadDir returns the entries of a directory, sorted by filename.
	ReadDir(name string) ([]os.FileInfo, error)
	Remove(name string) error
	RemoveAll(path string) error
}

type aferoFileSystem struct {
	fs afero.Fs
}

func (a *aferoFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFileSystem) Stat(name string) (os.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFileSystem) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFileSystem) ReadDir(name string) ([]os.FileInfo, error) {
	return afero.ReadDir(a.fs, name)
}

func (a *aferoFileSystem) Remove(name string) error {
	return a.fs.Remove(name)
}

func (a *aferoFileSystem) RemoveAll(path string) error {
	return a.fs.RemoveAll(path)
}

// NewOSFileSystem returns a FileSystem backed by the real OS filesystem.
func NewOSFileSystem() FileSystem {
	return &aferoFileSystem{fs: afero.NewOsFs()}
}

// NewMemMapFileSystem returns a FileSystem backed by afero's in-memory
// filesystem, for tests.
func NewMemMapFileSystem() FileSystem {
	return &aferoFileSystem{fs: afero.NewMemMapFs()}
}

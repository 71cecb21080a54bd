package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Root:       "/scratch",
		FileSystem: NewMemMapFileSystem(),
	})
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, "/scratch", m.Root())
	assert.True(t, m.IsAccessible())
}

func TestManager_Sub(t *testing.T) {
	m := newTestManager(t)

	jobs, err := m.Sub("jobs")
	require.NoError(t, err)
	assert.Equal(t, "/scratch/jobs", jobs.Root())
	assert.True(t, jobs.IsAccessible())
}

func TestManager_AcquireRelease(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire()
	require.NoError(t, err)
	assert.NotEmpty(t, ws.ID)

	path, err := ws.WriteFile("input.docx", []byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, ws.Join("input.docx"), path)

	got, err := ws.ReadFile("input.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("doc"), got)

	entries, err := ws.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "input.docx", entries[0].Name())

	ws.Release()
	_, err = m.fs.Stat(ws.Path)
	assert.Error(t, err, "workspace directory should be gone after release")
}

func TestManager_AcquireUniqueIDs(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Acquire()
	require.NoError(t, err)
	b, err := m.Acquire()
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Path, b.Path)
}

func TestWorkspace_ReleaseIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire()
	require.NoError(t, err)

	ws.Release()
	// Second release must not panic or report anything to the caller.
	ws.Release()
}

func TestWorkspace_ReadMissingFile(t *testing.T) {
	m := newTestManager(t)

	ws, err := m.Acquire()
	require.NoError(t, err)
	defer ws.Release()

	_, err = ws.ReadFile("absent.pdf")
	require.Error(t, err)
	var wsErr *WorkspaceError
	assert.ErrorAs(t, err, &wsErr)
	assert.Equal(t, "read output", wsErr.Operation)
}

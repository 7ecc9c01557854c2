package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/reports")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "reports"), got)

	got, err = ExpandPath("/var/lib/panelscan")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/panelscan", got)
}

func TestCreateFolderIfNotExists(t *testing.T) {
	tmpDir := t.TempDir()

	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, CreateFolderIfNotExists(nested))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, CreateFolderIfNotExists(nested), "existing folder is fine")

	file := filepath.Join(tmpDir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, CreateFolderIfNotExists(file))
}

func TestOutputFS(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "out")

	fs, err := OutputFS(folder)
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(fs, "summary.json", []byte("{}"), 0644))

	raw, err := os.ReadFile(filepath.Join(folder, "summary.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

package archive

import (
	"archive/zip"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "myproject")
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "sub"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(projectDir, "main.py"), []byte("print('hi')\n"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(projectDir, "sub", "data.txt"), []byte("data"), 0644))

	root := t.TempDir()
	now := time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local)

	zipPath, size, err := Create(projectDir, root, "MyProject", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "2025", "07", "21", "myproject_20250721_020000.zip"), zipPath)
	assert.Greater(t, size, int64(0))

	fi, err := os.Stat(zipPath)
	require.NoError(t, err)
	assert.Equal(t, size, fi.Size())

	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	// The top-level project folder name is preserved inside the archive.
	assert.Equal(t, []string{"myproject/main.py", "myproject/sub/data.txt"}, names)
}

func TestCreateMissingProjectDir(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 7, 21, 2, 0, 0, 0, time.Local)

	_, _, err := Create(filepath.Join(root, "no-such-dir"), root, "myproject", now)
	assert.Error(t, err)
}

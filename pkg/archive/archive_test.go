package archive

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/logger"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestCreateBackup(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "downloads")
	writeTree(t, root, map[string]string{
		"photos/alice_1.jpg":     "p",
		"videos/bob_2.mp4":       "v",
		"albums/3/carol_3_1.jpg": "a1",
		"albums/3/carol_3_2.mp4": "a2",
		"metadata/1.json":        `{"pk":"1"}`,
	})

	path, err := New(logger.NewNopLogger()).CreateBackup(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, BackupName), path)

	entries := readZip(t, path)
	assert.Equal(t, []string{
		"downloads/albums/3/carol_3_1.jpg",
		"downloads/albums/3/carol_3_2.mp4",
		"downloads/metadata/1.json",
		"downloads/photos/alice_1.jpg",
		"downloads/videos/bob_2.mp4",
	}, keys(entries))
	assert.Equal(t, "a2", entries["downloads/albums/3/carol_3_2.mp4"])

	leftovers, err := filepath.Glob(filepath.Join(base, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCreateBackupOverwrites(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "downloads")
	writeTree(t, root, map[string]string{"photos/a.jpg": "a"})

	a := New(nil)
	_, err := a.CreateBackup(root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "photos", "a.jpg")))
	writeTree(t, root, map[string]string{"photos/b.jpg": "b"})

	path, err := a.CreateBackup(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"downloads/photos/b.jpg"}, keys(readZip(t, path)))
}

func TestCreateBackupEmptyTree(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "downloads")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "photos"), 0o755))

	path, err := New(nil).CreateBackup(root)
	require.NoError(t, err)
	assert.Empty(t, readZip(t, path))
}

func TestCreateBackupMissingRoot(t *testing.T) {
	base := t.TempDir()

	path, err := New(nil).CreateBackup(filepath.Join(base, "nothing"))
	require.NoError(t, err)
	assert.Empty(t, readZip(t, path))
}

func TestCreateBackupUnwritableParent(t *testing.T) {
	_, err := New(nil).CreateBackup(filepath.Join(t.TempDir(), "missing", "downloads"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeArchive))
}

func TestCreateMetadataOnly(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "downloads")
	writeTree(t, root, map[string]string{
		"photos/alice_1.jpg": "p",
		"metadata/1.json":    `{"pk":"1"}`,
		"metadata/2.json":    `{"pk":"2"}`,
		"metadata/notes.txt": "x",
	})

	path, err := New(nil).CreateMetadataOnly(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, MetadataName), path)

	assert.Equal(t, []string{
		"downloads/metadata/1.json",
		"downloads/metadata/2.json",
	}, keys(readZip(t, path)))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0.00 B", FormatSize(0))
	assert.Equal(t, "512.00 B", FormatSize(512))
	assert.Equal(t, "1.50 KB", FormatSize(1536))
	assert.Equal(t, "2.00 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "1.00 GB", FormatSize(1<<30))
	assert.Equal(t, "2048.00 TB", FormatSize(1<<51))
}

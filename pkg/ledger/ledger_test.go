package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igsaved/pkg/logger"
	"igsaved/pkg/models"
)

func TestOpenMissingFile(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "data", "downloaded.json"), logger.NewNopLogger())

	assert.Equal(t, 0, l.Count())
	assert.False(t, l.IsDownloaded("1"))
	assert.True(t, l.LastUpdated().IsZero())
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"downloaded": [`), 0644))

	log := logger.NewTestLogger()
	l := Open(path, log)

	assert.Equal(t, 0, l.Count())
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "downloaded.json")
	ids := []string{"3141", "2718", "1618"}

	l := Open(path, logger.NewNopLogger())
	for _, id := range ids {
		l.MarkDownloaded(id)
	}
	require.NoError(t, l.Save())

	reloaded := Open(path, logger.NewNopLogger())
	for _, id := range ids {
		assert.True(t, reloaded.IsDownloaded(id), "id %s should survive reload", id)
	}
	assert.Equal(t, len(ids), reloaded.Count())
	assert.False(t, reloaded.LastUpdated().IsZero())
}

func TestMarkIsMemoryOnlyUntilSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded.json")

	l := Open(path, logger.NewNopLogger())
	l.MarkDownloaded("42")
	assert.True(t, l.IsDownloaded("42"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "ledger file must not exist before Save")

	fresh := Open(path, logger.NewNopLogger())
	assert.False(t, fresh.IsDownloaded("42"))
}

func TestSaveFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded.json")
	l := Open(path, logger.NewNopLogger())
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	l.MarkDownloaded("b")
	l.MarkDownloaded("a")
	l.MarkDownloaded("a")
	require.NoError(t, l.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f File
	require.NoError(t, json.Unmarshal(data, &f))
	assert.ElementsMatch(t, []string{"a", "b"}, f.Downloaded)
	assert.Equal(t, "2024-05-01T12:00:00Z", f.LastUpdated)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	l := Open(filepath.Join(blocker, "downloaded.json"), logger.NewNopLogger())
	l.MarkDownloaded("1")
	assert.Error(t, l.Save())
	assert.True(t, l.IsDownloaded("1"), "in-memory state survives a failed save")
}

func TestFilterPreservesOrder(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "downloaded.json"), logger.NewNopLogger())
	l.MarkDownloaded("2")
	l.MarkDownloaded("4")
	l.MarkDownloaded("99")

	candidates := []models.Post{{ID: "5"}, {ID: "4"}, {ID: "3"}, {ID: "2"}, {ID: "1"}}
	pending, skipped := l.Filter(candidates)

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"5", "3", "1"}, ids)
	assert.Equal(t, 2, skipped)
}

func TestIDsSorted(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "downloaded.json"), nil)
	for _, id := range []string{"c", "a", "b"} {
		l.MarkDownloaded(id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, l.IDs())
}

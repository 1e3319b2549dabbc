package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterback/shutterback/internal/errors"
)

var mediaExtensions = []string{".jpg", ".jpeg", ".png", ".mov"}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildIndexesBySize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2023/a.jpg", "four")        // size 4
	writeFile(t, root, "2023/b.jpg", "five5")       // size 5
	writeFile(t, root, "2024/c.jpg", "4444")        // size 4, collides with a.jpg
	writeFile(t, root, "2024/ignore.txt", "nomedia") // filtered out

	c, err := Build(root, mediaExtensions, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.SizeBucket(4), 2)
	assert.Len(t, c.SizeBucket(5), 1)
	assert.Empty(t, c.SizeBucket(99))
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "unmounted"), mediaExtensions, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCatalogScan, errors.GetCode(err))
}

func TestEntryFingerprintLazyAndCached(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.jpg", "content")

	e := NewEntry("a.jpg", 7, path)
	first, err := e.Fingerprint()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Digest must be cached: deleting the backing file no longer matters.
	require.NoError(t, os.Remove(path))
	second, err := e.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEntryFingerprintUnreadable(t *testing.T) {
	e := NewEntry("gone.jpg", 3, filepath.Join(t.TempDir(), "gone.jpg"))
	_, err := e.Fingerprint()
	assert.Error(t, err)
}

func TestBuildDoesNotHashAnything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jpg", "aaaa")
	writeFile(t, root, "b.jpg", "bbbb") // same size as a.jpg

	c, err := Build(root, mediaExtensions, nil)
	require.NoError(t, err)

	// Entries come back with empty digests until someone forces a compare.
	for _, e := range c.SizeBucket(4) {
		assert.Empty(t, e.digest)
	}
}

func TestRegisterSameRelPathReplaces(t *testing.T) {
	c := New()
	c.Register(&Entry{RelPath: "2023/a.jpg", Size: 10, digest: "old"})
	c.Register(&Entry{RelPath: "2023/a.jpg", Size: 12, digest: "new"})

	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.SizeBucket(10), "stale entry must leave its bucket")

	bucket := c.SizeBucket(12)
	require.Len(t, bucket, 1)
	got, err := bucket[0].Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestRegisterGroupsBySize(t *testing.T) {
	c := New()
	c.Register(&Entry{RelPath: "a.jpg", Size: 100, digest: "da"})
	c.Register(&Entry{RelPath: "b.jpg", Size: 100, digest: "db"})
	c.Register(&Entry{RelPath: "c.jpg", Size: 200, digest: "dc"})

	assert.Len(t, c.SizeBucket(100), 2)
	assert.Len(t, c.SizeBucket(200), 1)
	assert.Equal(t, 3, c.Len())
}

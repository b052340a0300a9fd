package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestNewFileObjectAtRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "example.txt"))

	obj, err := NewFileObject(filepath.Join(root, "example.txt"), root)
	require.NoError(t, err)

	require.Equal(t, "example.txt", obj.ExternalID)
	require.Equal(t, "example.txt", obj.Name)
	require.Contains(t, obj.MimeType, "text/plain")
	require.Empty(t, obj.Metadata)
	require.True(t, filepath.IsAbs(obj.Path))
}

func TestNewFileObjectNested(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a", "b", "file.pdf")
	writeFile(t, path)

	obj, err := NewFileObject(path, root)
	require.NoError(t, err)

	require.Equal(t, "a/b/file.pdf", obj.ExternalID)
	require.Equal(t, "file.pdf", obj.Name)
	require.Equal(t, "application/pdf", obj.MimeType)
	require.Equal(t, map[string]string{
		"folder": "a/b",
		"col0":   "a",
		"col1":   "b",
	}, obj.Metadata)
}

func TestNewFileObjectUnknownExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "blob.zzunknown")
	writeFile(t, path)

	obj, err := NewFileObject(path, root)
	require.NoError(t, err)
	require.Empty(t, obj.MimeType)

	row := obj.RawColumns().Document()
	require.NotContains(t, row, "mime_type")
}

// TestNewFileObjectStable verifies external id derivation is a pure function
// of (path, root).
func TestNewFileObjectStable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "sub", "file.txt")
	writeFile(t, path)

	first, err := NewFileObject(path, root)
	require.NoError(t, err)
	second, err := NewFileObject(path, root)
	require.NoError(t, err)

	require.Equal(t, first.ExternalID, second.ExternalID)
	require.Equal(t, first.MimeType, second.MimeType)
	require.Equal(t, first.Metadata, second.Metadata)
}

func TestNewFileObjectsAbortsOnFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	good := filepath.Join(root, "good.txt")
	writeFile(t, good)

	_, err := NewFileObjects(root, []string{good, filepath.Join(root, "missing.txt")})
	require.Error(t, err)
}

func TestRawColumns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "recursive", "report.pdf")
	writeFile(t, path)

	obj, err := NewFileObject(path, root)
	require.NoError(t, err)

	row := obj.RawColumns()
	require.Equal(t, "recursive/report.pdf", row.Key)
	require.Equal(t, map[string]string{
		"name":        "report.pdf",
		"external_id": "recursive/report.pdf",
		"mime_type":   "application/pdf",
		"folder":      "recursive",
		"col0":        "recursive",
	}, row.Document())
}

func TestTableIDString(t *testing.T) {
	t.Parallel()

	table := TableID{Database: "LandingZone", Table: "FileExtractor"}
	require.Equal(t, "LandingZone:FileExtractor", table.String())
}

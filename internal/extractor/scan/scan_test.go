package scan

import (
	"os"
	"path/filepath"
	"testing"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"
)

// newFixture lays out:
//
//	example.txt
//	.secret.txt
//	recursive/hidden.pdf
//	recursive/empty/ (directory only)
func newFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "example.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "recursive", "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "recursive", "hidden.pdf"), []byte("x"), 0o644))

	return root
}

func names(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

func TestMatchRecursive(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "*", true)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"example.txt", "hidden.pdf"}, names(paths))
}

func TestMatchNonRecursive(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "*", false)
	require.NoError(t, err)

	require.Equal(t, []string{"example.txt"}, names(paths))
}

// TestMatchNonRecursiveSubset verifies the non-recursive result is exactly
// the direct children of the recursive result.
func TestMatchNonRecursiveSubset(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	all, err := Match(glog.Shared, root, "*", true)
	require.NoError(t, err)
	direct, err := Match(glog.Shared, root, "*", false)
	require.NoError(t, err)

	require.Subset(t, all, direct)
	for _, p := range direct {
		require.Equal(t, root, filepath.Dir(p))
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "*.pdf", true)
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(root, "recursive", "hidden.pdf")}, paths)
}

func TestMatchSkipsHiddenFiles(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "*", true)
	require.NoError(t, err)

	for _, p := range paths {
		require.NotEqual(t, byte('.'), filepath.Base(p)[0])
	}
}

func TestMatchSkipsDirectories(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "*", true)
	require.NoError(t, err)

	for _, p := range paths {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		require.True(t, fi.Mode().IsRegular())
	}
}

func TestMatchEmptyPatternMatchesEverything(t *testing.T) {
	t.Parallel()

	root := newFixture(t)
	paths, err := Match(glog.Shared, root, "", true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
}

package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "data", "nested", "users.json")

	require.NoError(t, EnsureParentDir(target))

	fi, err := os.Stat(filepath.Join(tmp, "data", "nested"))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureParentDir_BareFileNameIsNoop(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, EnsureParentDir("users.json"))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "logs", "app.log")

	require.NoError(t, EnsureParentDir(target))
	require.NoError(t, EnsureParentDir(target))
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "logs"), []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(tmp, "logs", "app.log"))
	require.Error(t, err, "should fail when a file exists with the directory name")
}

func TestWriteFileAtomic_ReplacesContentAndCleansUp(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "users.json")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))
	require.NoError(t, WriteFileAtomic(target, []byte("new"), 0o600))

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "new", string(b))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileAtomic_MissingDirectoryFails(t *testing.T) {
	tmp := t.TempDir()
	err := WriteFileAtomic(filepath.Join(tmp, "absent", "users.json"), []byte("x"), 0o600)
	require.Error(t, err)
}

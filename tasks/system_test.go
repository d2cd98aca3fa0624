package tasks

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	dir := t.TempDir()

	output, err := ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "pwd; echo oops >&2")
	require.NoError(t, err)
	assert.Contains(t, string(output), "oops")

	_, err = ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.False(t, IsLaunchError(err))

	_, err = ExecRunner{}.Run(context.Background(), dir, "sipclean-no-such-build-tool", "clean")
	require.Error(t, err)
	assert.True(t, IsLaunchError(err))

	assert.False(t, IsLaunchError(nil))
}

func TestCleanWithMake(t *testing.T) {
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make is not available")
	}
	dir := t.TempDir()
	makefile := "clean:\n\trm -f siptop.o\n\ttouch cleaned.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte(makefile), 0644))
	for _, name := range []string{"siptop.o", "configure.py", "sipAPIprocesslib.h"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "x.o"), nil, 0644))

	cleaner, _ := newTestCleaner(afero.NewOsFs(), ExecRunner{})
	result, err := cleaner.Clean(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, result.PreCleaned)
	assert.ElementsMatch(t, []string{"Makefile", "cleaned.log", "sipAPIprocesslib.h"}, result.Removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Equal(t, []string{"build", "configure.py"}, names)
	assert.FileExists(t, filepath.Join(dir, "build", "x.o"))
}

func TestCleanUnreadableMakefile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), nil, 0000))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.o"), nil, 0644))

	runner := &recordingRunner{fs: afero.NewOsFs()}
	cleaner, _ := newTestCleaner(afero.NewOsFs(), runner)
	_, err := cleaner.Clean(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.NoFileExists(t, filepath.Join(dir, "a.o"))
}

func TestCleanKeepsDirectorySymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "x.o"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.o"), nil, 0644))
	if err := os.Symlink("real", filepath.Join(dir, "link")); err != nil {
		t.Skip("symlinks are not supported: ", err)
	}
	require.NoError(t, os.Symlink("a.o", filepath.Join(dir, "filelink")))
	require.NoError(t, os.Symlink("missing", filepath.Join(dir, "dangling")))

	cleaner, _ := newTestCleaner(afero.NewOsFs(), &recordingRunner{fs: afero.NewOsFs()})
	result, err := cleaner.Clean(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.o", "dangling", "filelink"}, result.Removed)

	info, err := os.Lstat(filepath.Join(dir, "link"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	assert.FileExists(t, filepath.Join(dir, "real", "x.o"))
}

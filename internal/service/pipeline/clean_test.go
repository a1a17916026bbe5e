package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClean_RemovesExistingPaths deletes the deps folder and node_modules.
func TestClean_RemovesExistingPaths(t *testing.T) {
	t.Parallel()

	prj := newProject(t)
	writeFile(t, filepath.Join(prj.cfg.DepsDir(), "react@1.0.0.js"), "old")

	ctx, logs := testContext(t)
	require.NoError(t, prj.newPipeline(t).Clean(ctx))

	for _, path := range []string{prj.cfg.DepsDir(), prj.cfg.ModulesDir()} {
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist, path)
	}

	require.Contains(t, logs.String(), "removing it")

	// The rest of the project is untouched.
	_, err := os.Stat(prj.cfg.ManifestPath())
	require.NoError(t, err)
}

// TestClean_MissingPathsAreNoop logs and carries on when nothing is there.
func TestClean_MissingPathsAreNoop(t *testing.T) {
	t.Parallel()

	prj := newProject(t)
	require.NoError(t, os.RemoveAll(prj.cfg.ModulesDir()))

	ctx, logs := testContext(t)
	pl := prj.newPipeline(t)

	require.NoError(t, pl.Clean(ctx))
	require.NoError(t, pl.Clean(ctx))
	require.Contains(t, logs.String(), "no action taken")
}

// TestClean_RemovesPlainFile handles an output path that is a file.
func TestClean_RemovesPlainFile(t *testing.T) {
	t.Parallel()

	prj := newProject(t)
	writeFile(t, prj.cfg.DepsDir(), "not a folder")

	ctx, _ := testContext(t)
	require.NoError(t, prj.newPipeline(t).Clean(ctx))

	_, err := os.Stat(prj.cfg.DepsDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestClean_FailureIsReported surfaces a path that cannot be removed.
func TestClean_FailureIsReported(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	prj := newProject(t)
	locked := filepath.Join(prj.cfg.DepsDir(), "locked")
	writeFile(t, filepath.Join(locked, "bundle.js"), "x")
	require.NoError(t, os.Chmod(locked, 0o500))

	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o755)
	})

	ctx, _ := testContext(t)
	err := prj.newPipeline(t).Clean(ctx)
	require.ErrorIs(t, err, ErrCleanFailed)
}

// TestClean_UnreachablePathIsReported fails on a deps path nested under a regular file.
func TestClean_UnreachablePathIsReported(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("windows reports a missing path instead of ENOTDIR")
	}

	prj := newProject(t)
	blocker := filepath.Join(prj.root, "blocker")
	writeFile(t, blocker, "not a folder")
	prj.cfg.DepsFolder = filepath.Join("blocker", "deps")

	ctx, _ := testContext(t)
	err := prj.newPipeline(t).Clean(ctx)
	require.ErrorIs(t, err, ErrCleanFailed)
	require.Contains(t, err.Error(), filepath.Join(blocker, "deps"))

	// Clean stops at the first failure.
	_, err = os.Stat(prj.cfg.ModulesDir())
	require.NoError(t, err)
}

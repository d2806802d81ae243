package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository with two commits of
// config.xml. The first commit is tagged v1.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	writeFile(t, dir, "config.xml", "<a><b>1</b></a>\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")
	runGit(t, dir, "tag", "v1")

	writeFile(t, dir, "config.xml", "<a><b>2</b></a>\n")
	writeFile(t, dir, "notes.txt", "hello\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Bump b")

	return dir
}

// runGit executes a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command git %v failed: %s", args, string(output))
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	require.NoError(t, err)
}

func TestRunner_Show(t *testing.T) {
	t.Parallel()

	dir := setupTestRepo(t)
	runner := git.NewRunner()
	ctx := context.Background()

	t.Run("returns content at revision", func(t *testing.T) {
		t.Parallel()

		old, err := runner.Show(ctx, dir, "v1", "config.xml")
		require.NoError(t, err)
		assert.Equal(t, "<a><b>1</b></a>\n", old)

		cur, err := runner.Show(ctx, dir, "HEAD", "config.xml")
		require.NoError(t, err)
		assert.Equal(t, "<a><b>2</b></a>\n", cur)
	})

	t.Run("reports missing path", func(t *testing.T) {
		t.Parallel()

		_, err := runner.Show(ctx, dir, "v1", "notes.txt")
		assert.ErrorIs(t, err, git.ErrPathNotFound)
	})

	t.Run("reports unknown revision", func(t *testing.T) {
		t.Parallel()

		_, err := runner.Show(ctx, dir, "no-such-rev", "config.xml")
		require.Error(t, err)
		assert.NotErrorIs(t, err, git.ErrPathNotFound)
	})
}

func TestSource_Load(t *testing.T) {
	t.Parallel()

	dir := setupTestRepo(t)
	src := git.NewSource(dir, nil)
	ctx := context.Background()

	t.Run("loads rev:path", func(t *testing.T) {
		t.Parallel()

		s, err := src.Load(ctx, "v1:config.xml")
		require.NoError(t, err)
		assert.Equal(t, "config.xml", s.Name)
		assert.Equal(t, anydiff.FormatXML, s.Format)
		assert.Equal(t, "<a><b>1</b></a>\n", s.Content)
	})

	t.Run("missing path is a missing side", func(t *testing.T) {
		t.Parallel()

		s, err := src.Load(ctx, "v1:notes.txt")
		require.NoError(t, err)
		assert.True(t, s.Missing)
	})

	t.Run("rejects malformed references", func(t *testing.T) {
		t.Parallel()

		for _, ref := range []string{"config.xml", ":config.xml", "HEAD:"} {
			_, err := src.Load(ctx, ref)
			assert.Error(t, err, ref)
		}
	})
}

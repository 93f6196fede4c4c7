package main_test

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildQuill builds the CLI into a temp dir and returns the binary path.
func buildQuill(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI build in short mode")
	}
	bin := filepath.Join(t.TempDir(), "quill.exe")
	out, err := exec.Command("go", "build", "-o", bin, ".").CombinedOutput()
	require.NoError(t, err, "build failed:\n%s", out)
	return bin
}

// run executes the binary in dir and returns stdout and the exit code.
func run(t *testing.T, dir, bin string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err, "stderr:\n%s", stderr.String())
	return string(out), 0
}

func TestCLI_PostLifecycle(t *testing.T) {
	bin := buildQuill(t)
	dir := t.TempDir()

	_, code := run(t, dir, bin, "init", "--posts", "posts")
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "quill.yaml"))
	assert.DirExists(t, filepath.Join(dir, "posts"))

	_, code = run(t, dir, bin, "new", "hello", "--title", "Hello World")
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "posts", "hello.md"))

	t.Run("Drafts Hidden by Default", func(t *testing.T) {
		out, code := run(t, dir, bin, "list")
		require.Equal(t, 0, code)
		assert.NotContains(t, out, "hello")

		out, code = run(t, dir, bin, "list", "--drafts", "--json")
		require.Equal(t, 0, code)
		var posts []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &posts))
		require.Len(t, posts, 1)
		assert.Equal(t, "hello", posts[0]["id"])
	})

	t.Run("Publish", func(t *testing.T) {
		out, code := run(t, dir, bin, "publish", "hello")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "Published hello")

		out, _ = run(t, dir, bin, "list")
		assert.Contains(t, out, "Hello World")

		_, code = run(t, dir, bin, "publish", "hello")
		assert.Equal(t, 1, code)
	})

	t.Run("Lint Warnings Fail Only When Strict", func(t *testing.T) {
		// A fresh post asks for a TOC but has no headings.
		out, code := run(t, dir, bin, "lint")
		assert.Equal(t, 0, code, out)
		assert.Contains(t, out, "[headings]")

		_, code = run(t, dir, bin, "lint", "--strict")
		assert.Equal(t, 1, code)
	})

	t.Run("Lint Errors Fail", func(t *testing.T) {
		broken := "---\ntitle: Broken\ndate: 2024-01-01\ntoc: false\nreadtime: 1\nautonumbering: false\ndraft: false\n---\n\n![plot](missing.png)\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "broken.md"), []byte(broken), 0644))

		out, code := run(t, dir, bin, "lint", "posts/broken.md")
		assert.Equal(t, 1, code)
		assert.Contains(t, out, "[images]")
	})

	t.Run("Status", func(t *testing.T) {
		out, code := run(t, dir, bin, "status")
		require.Equal(t, 0, code)
		var status map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &status))
		assert.Contains(t, status, "settings")
		assert.Contains(t, status, "storage")
	})

	t.Run("Delete", func(t *testing.T) {
		out, code := run(t, dir, bin, "delete", "hello")
		require.Equal(t, 0, code)
		assert.Contains(t, out, "Deleted hello")
		assert.NoFileExists(t, filepath.Join(dir, "posts", "hello.md"))

		_, code = run(t, dir, bin, "delete", "hello")
		assert.Equal(t, 1, code)
	})
}

func TestCLI_MandelbrotASCII(t *testing.T) {
	bin := buildQuill(t)
	out, code := run(t, t.TempDir(), bin, "mandelbrot", "--ascii", "--width", "40", "--height", "20", "--iter", "50")
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		assert.Len(t, []rune(line), 40)
	}
	assert.Contains(t, out, "@", "points inside the set use the densest character")
}

func TestCLI_MandelbrotPNG(t *testing.T) {
	bin := buildQuill(t)
	dir := t.TempDir()
	_, code := run(t, dir, bin, "mandelbrot", "--width", "64", "--height", "48", "--out", "set.png", "--thumb", "16", "--palette", "bands")
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "set.png"))
	assert.FileExists(t, filepath.Join(dir, "set.thumb.png"))
}

package target

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tgt, err := Resolve("https://example.com/page", nil, false, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, KindURL, tgt.Kind)
	require.Equal(t, "https://example.com/page", tgt.URL)
	require.Empty(t, tgt.BaseName)
}

func TestResolveBareHost(t *testing.T) {
	t.Parallel()

	tgt, err := Resolve("example.com", nil, false, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, KindURL, tgt.Kind)
	require.Equal(t, "https://example.com", tgt.URL)

	tgt, err = Resolve("localhost:8080/status", nil, false, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "https://localhost:8080/status", tgt.URL)
}

func TestResolveLocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>hi</h1>"), 0o644))

	tgt, err := Resolve(path, nil, false, dir)
	require.NoError(t, err)
	require.Equal(t, KindFile, tgt.Kind)
	require.Equal(t, "file://"+path, tgt.URL)
	require.Equal(t, "page", tgt.BaseName)
}

func TestResolveMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Resolve(filepath.Join(t.TempDir(), "gone.html"), nil, false, t.TempDir())
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestResolveMistypedRelativePath(t *testing.T) {
	t.Parallel()

	// A dotted name with a document extension is a missing file, not a host.
	for _, arg := range []string{"page.html", "Page.HTML", "report.pdf", "notes.htm"} {
		_, err := Resolve(arg, nil, false, t.TempDir())
		require.ErrorIs(t, err, ErrFileNotFound, "arg %q", arg)
	}

	// An extension past the host does not block the bare-host fallback.
	tgt, err := Resolve("example.com/index.html", nil, false, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "https://example.com/index.html", tgt.URL)
}

func TestResolveStdin(t *testing.T) {
	t.Parallel()

	t.Run("html from pipe", func(t *testing.T) {
		dir := t.TempDir()
		tgt, err := Resolve("", strings.NewReader("<p>piped</p>"), true, dir)
		require.NoError(t, err)
		require.Equal(t, KindStdin, tgt.Kind)
		require.Equal(t, "stdin", tgt.BaseName)
		require.True(t, strings.HasPrefix(tgt.URL, "file://"+dir))

		data, err := os.ReadFile(strings.TrimPrefix(tgt.URL, "file://"))
		require.NoError(t, err)
		require.Equal(t, "<p>piped</p>", string(data))
	})

	t.Run("no pipe fails", func(t *testing.T) {
		_, err := Resolve("", strings.NewReader(""), false, t.TempDir())
		require.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("empty pipe fails", func(t *testing.T) {
		_, err := Resolve("", strings.NewReader("  \n"), true, t.TempDir())
		require.ErrorIs(t, err, ErrMissingInput)
	})
}

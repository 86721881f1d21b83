// Package target resolves the capture input: a URL, a local HTML file, or
// literal HTML read from standard input.
package target

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMissingInput means no URL or file argument was given and stdin
	// carried no HTML either.
	ErrMissingInput = errors.New("missing input: pass a URL or file path, or pipe HTML to stdin")

	// ErrFileNotFound means the argument referenced a local file that does
	// not exist.
	ErrFileNotFound = errors.New("file not found")
)

// Kind says where the capture input came from.
type Kind int

const (
	KindURL Kind = iota
	KindFile
	KindStdin
)

// Target is a resolved capture input.
type Target struct {
	Kind Kind
	// URL is what the engine navigates to; local files and stdin HTML are
	// addressed via file://.
	URL string
	// BaseName is the filename base used for auto-derived output names.
	// Empty for URL inputs, where the name derives from the URL itself.
	BaseName string
}

// Resolve turns the positional argument (or stdin) into a Target. With no
// argument, HTML is read from stdin to EOF and parked in a temp file so the
// engine can navigate to it like any other page. stdinIsPipe should come from
// the caller's os.Stdin.Stat() so that the resolver stays testable.
func Resolve(arg string, stdin io.Reader, stdinIsPipe bool, tmpDir string) (*Target, error) {
	if arg == "" {
		return fromStdin(stdin, stdinIsPipe, tmpDir)
	}

	if u, err := url.Parse(arg); err == nil {
		switch u.Scheme {
		case "http", "https", "file":
			return &Target{Kind: KindURL, URL: arg}, nil
		}
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", arg, err)
		}
		base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		return &Target{Kind: KindFile, URL: "file://" + abs, BaseName: base}, nil
	}

	// Not on disk: a bare hostname like example.com is treated as https.
	if looksLikeHost(arg) {
		return &Target{Kind: KindURL, URL: "https://" + arg}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, arg)
}

func fromStdin(stdin io.Reader, stdinIsPipe bool, tmpDir string) (*Target, error) {
	if !stdinIsPipe {
		return nil, ErrMissingInput
	}

	html, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(strings.TrimSpace(string(html))) == 0 {
		return nil, ErrMissingInput
	}

	path := filepath.Join(tmpDir, uuid.New().String()+".html")
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return nil, fmt.Errorf("writing stdin HTML to %s: %w", path, err)
	}

	return &Target{Kind: KindStdin, URL: "file://" + path, BaseName: "stdin"}, nil
}

// documentExts are extensions that mark an argument as a mistyped local
// path rather than a hostname, so a missing file fails here instead of as a
// browser DNS error.
var documentExts = map[string]bool{
	".htm":   true,
	".html":  true,
	".xhtml": true,
	".svg":   true,
	".pdf":   true,
}

// looksLikeHost reports whether an argument that is not a file on disk can
// plausibly be a hostname.
func looksLikeHost(arg string) bool {
	host := arg
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return true
	}
	if documentExts[strings.ToLower(filepath.Ext(host))] {
		return false
	}
	return strings.Contains(host, ".") && !strings.ContainsAny(host, " \\")
}

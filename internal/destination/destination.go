// Package destination decides where captured bytes go: standard output, an
// explicit file path, or a filename derived from the input. The working
// directory is an explicit parameter so collision checks stay testable.
package destination

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"webshot/internal/target"
)

// ErrOutputExists means the explicit output path is already taken and
// --overwrite was not set.
var ErrOutputExists = errors.New("already exists, pass --overwrite to replace it")

// Destination is where the capture result is written.
type Destination struct {
	Stream bool   // write bytes to stdout
	Path   string // file path, when Stream is false
}

// ResolveInput carries everything the resolver needs. StdoutIsPipe should be
// computed by the caller from os.Stdout.Stat().
type ResolveInput struct {
	ExplicitPath string
	Overwrite    bool
	AutoOutput   bool
	StdoutIsPipe bool
	Target       *target.Target
	Type         string // output type, becomes the file extension
	WorkDir      string // directory for derived filenames
}

// Resolve picks exactly one destination. Precedence: explicit path, then
// stream mode (stdout is a pipe, or the path is "-"), then a derived
// filename. AutoOutput forces the derived filename even when stdout is a
// pipe. Explicit paths fail on collision unless overwrite is set; derived
// names never overwrite, they count up instead.
func Resolve(in ResolveInput) (Destination, error) {
	if in.ExplicitPath == "-" {
		return Destination{Stream: true}, nil
	}

	if in.ExplicitPath != "" {
		if _, err := os.Stat(in.ExplicitPath); err == nil && !in.Overwrite {
			return Destination{}, fmt.Errorf("%s %w", in.ExplicitPath, ErrOutputExists)
		}
		return Destination{Path: in.ExplicitPath}, nil
	}

	if in.StdoutIsPipe && !in.AutoOutput {
		return Destination{Stream: true}, nil
	}

	base := deriveBase(in.Target)
	ext := in.Type
	path := filepath.Join(in.WorkDir, base+"."+ext)
	for i := 1; exists(path); i++ {
		path = filepath.Join(in.WorkDir, fmt.Sprintf("%s (%d).%s", base, i, ext))
	}
	return Destination{Path: path}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// deriveBase picks the filename base: the fixed stdin placeholder, the local
// file's name, or the sanitized hostname+path of a URL input.
func deriveBase(t *target.Target) string {
	if t.BaseName != "" {
		return t.BaseName
	}
	return sanitizeURL(t.URL)
}

// sanitizeURL folds a URL's hostname and path into one filesystem-safe
// string, separating path segments with "!".
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return filenamify(raw)
	}

	base := u.Hostname()
	if p := strings.Trim(u.Path, "/"); p != "" {
		if base != "" {
			base += "!"
		}
		base += strings.ReplaceAll(p, "/", "!")
	}
	if base == "" {
		base = "screenshot"
	}
	return filenamify(base)
}

// filenamify replaces characters that are unsafe in filenames with "!".
func filenamify(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == '!', r == ' ', r == '(', r == ')':
			return r
		default:
			return '!'
		}
	}, s)
}

// Package engine drives a headless Chrome/Chromium via chromedp to capture a
// page as an image or PDF. It consumes the canonical options assembled by
// the options package and surfaces browser errors as-is.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"webshot/internal/config"
)

// Engine captures pages with the browser configuration baked in at
// construction. One Engine performs one capture per call; it keeps no
// browser state between calls.
type Engine struct {
	opts *config.CanonicalOptions
}

// New returns an Engine for the given canonical options.
func New(opts *config.CanonicalOptions) *Engine {
	return &Engine{opts: opts}
}

// CaptureBuffer navigates to targetURL and returns the captured image or PDF
// bytes.
func (e *Engine) CaptureBuffer(ctx context.Context, targetURL string) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, e.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if e.opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, time.Duration(e.opts.Timeout)*time.Second)
		defer cancelTimeout()
	}

	var docStatus atomic.Int64
	if e.opts.ThrowOnHTTPError {
		listenDocumentStatus(browserCtx, &docStatus)
	}

	var idle *idleWaiter
	if e.opts.WaitForNetworkIdle {
		idle = newIdleWaiter(browserCtx)
	}

	if e.opts.LogConsole {
		listenConsole(browserCtx)
	}

	var buf []byte
	actions := e.buildActions(targetURL, idle, &docStatus)
	actions = append(actions, e.captureAction(&buf))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	return buf, nil
}

// CaptureFile captures targetURL and writes the bytes to path, creating
// parent directories as needed.
func (e *Engine) CaptureFile(ctx context.Context, targetURL, path string) error {
	// Create the directory up front so a bad path fails before the browser
	// is launched.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	buf, err := e.CaptureBuffer(ctx, targetURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (e *Engine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dbus", true),
	)
	if e.opts.Insecure {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if e.opts.AllowCORS {
		opts = append(opts, chromedp.Flag("disable-web-security", true))
	}
	if e.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(e.opts.UserAgent))
	}
	// Launch options pass through to the browser command line verbatim.
	for name, value := range e.opts.LaunchOptions {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if chromePath := resolveChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

// listenDocumentStatus records the HTTP status of the main document response.
func listenDocumentStatus(ctx context.Context, status *atomic.Int64) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, resp.Response.Status)
		}
	})
}

// idleWaiter signals once the navigated document reaches the networkIdle
// lifecycle event. Events are keyed by loader ID so the initial blank page
// cannot satisfy the wait; arm it with the loader ID returned by
// Page.navigate. Requires page.SetLifecycleEventsEnabled.
type idleWaiter struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]bool
	target cdp.LoaderID
	idle   chan struct{}
}

func newIdleWaiter(ctx context.Context) *idleWaiter {
	w := &idleWaiter{
		seen: make(map[cdp.LoaderID]bool),
		idle: make(chan struct{}, 1),
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if lc, ok := ev.(*page.EventLifecycleEvent); ok && lc.Name == "networkIdle" {
			w.observe(lc.LoaderID)
		}
	})
	return w
}

func (w *idleWaiter) observe(id cdp.LoaderID) {
	w.mu.Lock()
	w.seen[id] = true
	match := w.target != "" && id == w.target
	w.mu.Unlock()
	if match {
		w.signal()
	}
}

// arm sets the loader ID the waiter watches for. The event may already have
// arrived by the time the navigate command returns, so a recorded sighting
// signals immediately.
func (w *idleWaiter) arm(id cdp.LoaderID) {
	w.mu.Lock()
	w.target = id
	match := w.seen[id]
	w.mu.Unlock()
	if match {
		w.signal()
	}
}

func (w *idleWaiter) signal() {
	select {
	case w.idle <- struct{}{}:
	default:
	}
}

func (w *idleWaiter) wait(ctx context.Context) error {
	select {
	case <-w.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// listenConsole forwards page console output to the error stream.
func listenConsole(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		call, ok := ev.(*runtime.EventConsoleAPICalled)
		if !ok {
			return
		}
		parts := make([]string, 0, len(call.Args))
		for _, arg := range call.Args {
			if len(arg.Value) > 0 {
				parts = append(parts, string(arg.Value))
			} else if arg.Description != "" {
				parts = append(parts, arg.Description)
			}
		}
		slog.Info("console", "type", call.Type.String(), "message", strings.Join(parts, " "))
	})
}

func resolveChromePath() string {
	if envPath := strings.TrimSpace(os.Getenv("CHROME_BIN")); envPath != "" {
		if fileExists(envPath) {
			return envPath
		}
	}

	candidates := []string{
		"/opt/google/chrome/chrome",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

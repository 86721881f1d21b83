package engine

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/stretchr/testify/require"

	"webshot/internal/config"
	"webshot/internal/flagparse"
)

func TestMarginInches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		margin flagparse.Margin
		want   float64
	}{
		{flagparse.Margin{Value: 1, Unit: "in", Raw: "1in"}, 1},
		{flagparse.Margin{Value: 2.54, Unit: "cm", Raw: "2.54cm"}, 1},
		{flagparse.Margin{Value: 25.4, Unit: "mm", Raw: "25.4mm"}, 1},
		{flagparse.Margin{Value: 96, Unit: "px", Raw: "96px"}, 1},
		{flagparse.Margin{Value: 96, Raw: "96"}, 1},
		{flagparse.Margin{Value: 48, Raw: "48"}, 0.5},
	}

	for _, tt := range tests {
		require.InDelta(t, tt.want, marginInches(tt.margin), 1e-9, "margin %q", tt.margin.Raw)
	}
}

func TestPaperFormats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"letter", "legal", "tabloid", "ledger", "a0", "a3", "a4", "a6"} {
		size, ok := paperFormats[format]
		require.True(t, ok, "format %q", format)
		require.Greater(t, size.width, 0.0)
		require.Greater(t, size.height, 0.0)
	}
}

func TestLookupDevice(t *testing.T) {
	t.Parallel()

	dev, ok := LookupDevice("iPhone X")
	require.True(t, ok)
	require.NotZero(t, dev.Width)
	require.NotZero(t, dev.Height)
	require.NotEmpty(t, dev.Name)

	_, ok = LookupDevice("IPHONE x")
	require.True(t, ok, "lookup is case-insensitive")

	_, ok = LookupDevice("Commodore 64")
	require.False(t, ok)

	_, ok = LookupDevice("")
	require.False(t, ok)
}

func TestListDevices(t *testing.T) {
	t.Parallel()

	names := ListDevices()
	require.Len(t, names, len(deviceRegistry))
	require.True(t, sort.StringsAreSorted(names))

	for _, name := range names {
		dev, ok := LookupDevice(name)
		require.True(t, ok, name)
		require.NotZero(t, dev.Width, name)
	}
}

func TestIdleWaiter(t *testing.T) {
	t.Parallel()

	newWaiter := func() *idleWaiter {
		return &idleWaiter{seen: make(map[cdp.LoaderID]bool), idle: make(chan struct{}, 1)}
	}
	waitCtx := func() context.Context {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		t.Cleanup(cancel)
		return ctx
	}

	t.Run("event before arming does not satisfy the wait", func(t *testing.T) {
		w := newWaiter()
		w.observe("blank-page")
		w.arm("target")
		require.ErrorIs(t, w.wait(waitCtx()), context.DeadlineExceeded)
	})

	t.Run("matching event after arming signals", func(t *testing.T) {
		w := newWaiter()
		w.arm("target")
		w.observe("target")
		require.NoError(t, w.wait(waitCtx()))
	})

	t.Run("matching event seen before arming signals", func(t *testing.T) {
		w := newWaiter()
		w.observe("target")
		w.arm("target")
		require.NoError(t, w.wait(waitCtx()))
	})
}

func TestApplyInset(t *testing.T) {
	t.Parallel()

	r := applyInset(domRect{Width: 100, Height: 100}, &config.Inset{Top: 10, Right: -15, Bottom: -15, Left: 25})
	require.Equal(t, domRect{X: 25, Y: 10, Width: 90, Height: 105}, r)
}

func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	e := New(&config.CanonicalOptions{
		Headers:        map[string]string{"X-Token": "abc"},
		Authentication: &config.Credentials{Username: "user", Password: "pa:ss"},
	})
	headers := e.requestHeaders()
	require.Equal(t, "abc", headers["X-Token"])
	require.Equal(t, "Basic dXNlcjpwYTpzcw==", headers["Authorization"])
}

func TestInjectionSource(t *testing.T) {
	t.Parallel()

	code, srcURL := injectionSource("https://cdn.example.com/app.js")
	require.Empty(t, code)
	require.Equal(t, "https://cdn.example.com/app.js", srcURL)

	code, srcURL = injectionSource("document.title = 'x'")
	require.Equal(t, "document.title = 'x'", code)
	require.Empty(t, srcURL)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"webshot/internal/config"
	"webshot/internal/destination"
	"webshot/internal/engine"
	"webshot/internal/options"
	"webshot/internal/target"
)

var fl config.Flags

var rootCmd = &cobra.Command{
	Use:   "webshot [url|file]",
	Short: "Capture screenshots and PDFs of web pages",
	Long: `webshot captures a web page as a PNG, JPEG, WebP or PDF using a headless
Chrome/Chromium browser.

The input is a URL, a local HTML file, or HTML piped to stdin. The output
goes to an explicit --output path, to stdout when it is piped (or --output
is "-"), or to a filename derived from the input. Derived names never
overwrite existing files; a counter is appended instead.`,
	Example: `  webshot https://example.com
  webshot --full-page --type jpeg https://example.com
  webshot --output page.png --overwrite https://example.com
  webshot https://example.com | wc -c
  echo "<h1>Hi</h1>" | webshot --type pdf
  webshot --emulate-device "iPhone X" https://example.com`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&fl.Output, "output", "o", "", `output file path ("-" for stdout)`)
	f.IntVar(&fl.Width, "width", 1280, "viewport width in pixels")
	f.IntVar(&fl.Height, "height", 800, "viewport height in pixels")
	f.StringVarP(&fl.Type, "type", "t", "png", "output type: png, jpeg, webp or pdf")
	f.IntVar(&fl.Quality, "quality", 100, "image quality 1-100 (jpeg and webp only)")
	f.Float64Var(&fl.ScaleFactor, "scale-factor", 2, "device scale factor")
	f.BoolVar(&fl.ListDevices, "list-devices", false, "list devices available for --emulate-device and exit")
	f.StringVar(&fl.EmulateDevice, "emulate-device", "", `emulate a device, e.g. "iPhone X"`)
	f.BoolVar(&fl.FullPage, "full-page", false, "capture the full scrollable page")
	f.BoolVar(&fl.NoDefaultBackground, "no-default-background", false, "transparent background instead of white")
	f.IntVar(&fl.Timeout, "timeout", 60, "capture timeout in seconds")
	f.IntVar(&fl.Delay, "delay", 0, "seconds to wait after page load before capturing")
	f.StringVar(&fl.WaitForElement, "wait-for-element", "", "wait for a CSS selector to appear")
	f.StringVar(&fl.Element, "element", "", "capture only the element matching this CSS selector")
	f.StringArrayVar(&fl.HideElements, "hide-elements", nil, "hide elements matching a CSS selector (repeatable)")
	f.StringArrayVar(&fl.RemoveElements, "remove-elements", nil, "remove elements matching a CSS selector (repeatable)")
	f.StringVar(&fl.ClickElement, "click-element", "", "click the element matching this CSS selector")
	f.StringVar(&fl.ScrollToElement, "scroll-to-element", "", "scroll to the element matching this CSS selector")
	f.BoolVar(&fl.DisableAnimations, "disable-animations", false, "disable CSS animations and transitions")
	f.BoolVar(&fl.NoJavaScript, "no-javascript", false, "disable JavaScript execution")
	f.StringArrayVar(&fl.Modules, "module", nil, "inject a JavaScript module: URL, file path or inline code (repeatable)")
	f.StringArrayVar(&fl.Scripts, "script", nil, "inject a script: URL, file path or inline code (repeatable)")
	f.StringArrayVar(&fl.Styles, "style", nil, "inject a stylesheet: URL, file path or inline CSS (repeatable)")
	f.StringArrayVar(&fl.Headers, "header", nil, `custom request header "name: value" (repeatable)`)
	f.StringVar(&fl.UserAgent, "user-agent", "", "custom User-Agent string")
	f.StringArrayVar(&fl.Cookies, "cookie", nil, `cookie "name=value[; attributes]" (repeatable)`)
	f.StringVar(&fl.Authentication, "authentication", "", `basic auth credentials "username:password"`)
	f.BoolVar(&fl.Debug, "debug", false, "verbose logging to stderr")
	f.BoolVar(&fl.DarkMode, "dark-mode", false, "emulate prefers-color-scheme: dark")
	f.StringVar(&fl.LaunchOptions, "launch-options", "", "extra browser launch options as a JSON object")
	f.BoolVar(&fl.Overwrite, "overwrite", false, "replace an existing file at --output")
	f.StringVar(&fl.Inset, "inset", "", "shrink the capture area: one value or top,right,bottom,left")
	f.StringVar(&fl.Clip, "clip", "", "capture region: x,y,width,height")
	f.BoolVar(&fl.NoBlockAds, "no-block-ads", false, "do not block known ad hosts")
	f.StringArrayVar(&fl.LocalStorage, "local-storage", nil, `localStorage entry "key=value" (repeatable)`)
	f.BoolVar(&fl.AutoOutput, "auto-output", false, "write to a derived filename even when stdout is piped")
	f.BoolVar(&fl.Insecure, "insecure", false, "ignore TLS certificate errors")
	f.BoolVar(&fl.ThrowOnHTTPError, "throw-on-http-error", false, "fail when the page responds with 4xx/5xx")
	f.BoolVar(&fl.LogConsole, "log-console", false, "forward page console output to stderr")
	f.StringVar(&fl.Referrer, "referrer", "", "referrer header for the navigation")
	f.BoolVar(&fl.PreloadLazyContent, "preload-lazy-content", false, "scroll through the page to trigger lazy loading")
	f.StringVar(&fl.PDFFormat, "pdf-format", "letter", "PDF paper format: letter, legal, tabloid, ledger, a0-a6")
	f.BoolVar(&fl.PDFLandscape, "pdf-landscape", false, "landscape PDF orientation")
	f.StringVar(&fl.PDFMargin, "pdf-margin", "", "PDF margin: one value or top,right,bottom,left, each a number or with a px/in/cm/mm unit")
	f.BoolVar(&fl.AllowCORS, "allow-cors", false, "disable the browser's same-origin policy")
	f.BoolVar(&fl.WaitForNetworkIdle, "wait-for-network-idle", false, "wait for the network to go idle before capturing")
	f.BoolVar(&fl.InternalPrintFlags, "internal-print-flags", false, "print the assembled options as JSON and exit")
	f.MarkHidden("internal-print-flags")
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if fl.LogConsole {
		level = slog.LevelInfo
	}
	if fl.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if fl.ListDevices {
		for _, name := range engine.ListDevices() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	if fl.EmulateDevice != "" {
		if _, ok := engine.LookupDevice(fl.EmulateDevice); !ok {
			return fmt.Errorf("unknown device %q, see --list-devices", fl.EmulateDevice)
		}
	}

	opts, err := options.Assemble(&fl)
	if err != nil {
		return err
	}

	if fl.InternalPrintFlags {
		dump, err := json.Marshal(opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(dump))
		return nil
	}

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	tgt, err := target.Resolve(arg, os.Stdin, stdinHasData(), os.TempDir())
	if err != nil {
		return err
	}
	if tgt.Kind == target.KindStdin {
		defer os.Remove(strings.TrimPrefix(tgt.URL, "file://"))
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	dest, err := destination.Resolve(destination.ResolveInput{
		ExplicitPath: fl.Output,
		Overwrite:    fl.Overwrite,
		AutoOutput:   fl.AutoOutput,
		StdoutIsPipe: stdoutIsPipe(),
		Target:       tgt,
		Type:         opts.Type,
		WorkDir:      workDir,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	eng := engine.New(opts)

	if dest.Stream {
		buf, err := eng.CaptureBuffer(ctx, tgt.URL)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		return err
	}

	slog.Debug("capturing", "input", tgt.URL, "output", dest.Path)
	return eng.CaptureFile(ctx, tgt.URL, dest.Path)
}

// stdinHasData reports whether stdin is a pipe or redirect rather than a
// terminal.
func stdinHasData() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

// stdoutIsPipe reports whether stdout is attached to a pipe, as opposed to a
// terminal or a regular file.
func stdoutIsPipe() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe != 0
}

// Execute runs the root command. Errors are reported on stderr as a single
// line; the caller turns them into a non-zero exit.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

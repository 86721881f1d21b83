// Package options validates raw flag values and assembles them into the
// canonical configuration handed to the capture engine. Assemble is pure:
// it performs no I/O, so every malformed flag is caught before a browser is
// launched or a file is touched.
package options

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"webshot/internal/config"
	"webshot/internal/flagparse"
)

var outputTypes = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
	"pdf":  true,
}

// Assemble merges parsed and validated flag values into one CanonicalOptions,
// applying defaults for everything omitted and positive polarity for the
// negated boolean flags. PDF settings are nested only when type is pdf.
func Assemble(fl *config.Flags) (*config.CanonicalOptions, error) {
	opts := config.DefaultOptions()

	if fl.Type != "" {
		if !outputTypes[fl.Type] {
			return nil, &flagparse.FormatError{Flag: "type", Reason: fmt.Sprintf("unsupported output type %q (png, jpeg, webp or pdf)", fl.Type)}
		}
		opts.Type = fl.Type
	}

	if fl.Width > 0 {
		opts.Width = fl.Width
	}
	if fl.Height > 0 {
		opts.Height = fl.Height
	}
	if fl.Quality > 0 {
		opts.Quality = fl.Quality
	}
	if fl.ScaleFactor > 0 {
		opts.ScaleFactor = fl.ScaleFactor
	}
	if fl.Timeout > 0 {
		opts.Timeout = fl.Timeout
	}
	opts.Delay = fl.Delay

	if err := validateSelectors(fl); err != nil {
		return nil, err
	}
	opts.WaitForElement = fl.WaitForElement
	opts.Element = fl.Element
	opts.ClickElement = fl.ClickElement
	opts.ScrollToElement = fl.ScrollToElement
	if len(fl.HideElements) > 0 {
		opts.HideElements = fl.HideElements
	}
	if len(fl.RemoveElements) > 0 {
		opts.RemoveElements = fl.RemoveElements
	}

	opts.EmulateDevice = fl.EmulateDevice
	opts.FullPage = fl.FullPage
	opts.DisableAnimations = fl.DisableAnimations
	opts.DarkMode = fl.DarkMode
	opts.Insecure = fl.Insecure
	opts.ThrowOnHTTPError = fl.ThrowOnHTTPError
	opts.LogConsole = fl.LogConsole
	opts.Referrer = fl.Referrer
	opts.PreloadLazyContent = fl.PreloadLazyContent
	opts.AllowCORS = fl.AllowCORS
	opts.WaitForNetworkIdle = fl.WaitForNetworkIdle
	opts.UserAgent = fl.UserAgent

	// Negated flags collapse into positive fields.
	opts.DefaultBackground = !fl.NoDefaultBackground
	opts.JavaScript = !fl.NoJavaScript
	opts.BlockAds = !fl.NoBlockAds

	if len(fl.Modules) > 0 {
		opts.Modules = fl.Modules
	}
	if len(fl.Scripts) > 0 {
		opts.Scripts = fl.Scripts
	}
	if len(fl.Styles) > 0 {
		opts.Styles = fl.Styles
	}
	if len(fl.Cookies) > 0 {
		opts.Cookies = fl.Cookies
	}

	if len(fl.Headers) > 0 {
		headers, err := flagparse.KeyValue("header", fl.Headers, ":=")
		if err != nil {
			return nil, err
		}
		opts.Headers = headers
	}

	if len(fl.LocalStorage) > 0 {
		storage, err := flagparse.KeyValue("local-storage", fl.LocalStorage, "=")
		if err != nil {
			return nil, err
		}
		opts.LocalStorage = storage
	}

	if fl.Authentication != "" {
		user, pass := flagparse.Credentials(fl.Authentication)
		opts.Authentication = &config.Credentials{Username: user, Password: pass}
	}

	if fl.LaunchOptions != "" {
		launch, err := flagparse.JSONObject("launch-options", fl.LaunchOptions)
		if err != nil {
			return nil, err
		}
		opts.LaunchOptions = launch
	}

	if fl.Clip != "" {
		v, err := flagparse.Tuple("clip", fl.Clip)
		if err != nil {
			return nil, err
		}
		opts.Clip = &config.Clip{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	}

	if fl.Inset != "" {
		v, err := flagparse.Tuple("inset", fl.Inset)
		if err != nil {
			return nil, err
		}
		opts.Inset = &config.Inset{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	}

	if opts.Type == "pdf" {
		pdf := &config.PDFOptions{
			Format:    fl.PDFFormat,
			Landscape: fl.PDFLandscape,
		}
		if pdf.Format == "" {
			pdf.Format = "letter"
		}
		if fl.PDFMargin != "" {
			m, err := flagparse.MarginTuple("pdf-margin", fl.PDFMargin)
			if err != nil {
				return nil, err
			}
			pdf.Margin = &config.PDFMargin{Top: m[0], Right: m[1], Bottom: m[2], Left: m[3]}
		}
		opts.PDF = pdf
	}

	return opts, nil
}

// selectorFlags maps flag names to their single selector value.
func validateSelectors(fl *config.Flags) error {
	single := map[string]string{
		"wait-for-element":  fl.WaitForElement,
		"element":           fl.Element,
		"click-element":     fl.ClickElement,
		"scroll-to-element": fl.ScrollToElement,
	}
	for flag, sel := range single {
		if err := checkSelector(flag, sel); err != nil {
			return err
		}
	}
	for _, sel := range fl.HideElements {
		if err := checkSelector("hide-elements", sel); err != nil {
			return err
		}
	}
	for _, sel := range fl.RemoveElements {
		if err := checkSelector("remove-elements", sel); err != nil {
			return err
		}
	}
	return nil
}

func checkSelector(flag, sel string) error {
	if sel == "" {
		return nil
	}
	if _, err := cascadia.Parse(sel); err != nil {
		return &flagparse.FormatError{Flag: flag, Reason: fmt.Sprintf("invalid CSS selector %q: %v", sel, err)}
	}
	return nil
}

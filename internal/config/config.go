package config

import "webshot/internal/flagparse"

// Flags holds the raw CLI flag values for a webshot run, one field per flag.
// Compound values stay as strings here; parsing and validation happen in the
// options package before anything touches the network or filesystem.
type Flags struct {
	Output              string
	Width               int
	Height              int
	Type                string
	Quality             int
	ScaleFactor         float64
	ListDevices         bool
	EmulateDevice       string
	FullPage            bool
	NoDefaultBackground bool
	Timeout             int // seconds
	Delay               int // seconds
	WaitForElement      string
	Element             string
	HideElements        []string
	RemoveElements      []string
	ClickElement        string
	ScrollToElement     string
	DisableAnimations   bool
	NoJavaScript        bool
	Modules             []string
	Scripts             []string
	Styles              []string
	Headers             []string
	UserAgent           string
	Cookies             []string
	Authentication      string
	Debug               bool
	DarkMode            bool
	LaunchOptions       string
	Overwrite           bool
	Inset               string
	Clip                string
	NoBlockAds          bool
	LocalStorage        []string
	AutoOutput          bool
	Insecure            bool
	ThrowOnHTTPError    bool
	LogConsole          bool
	Referrer            string
	PreloadLazyContent  bool
	PDFFormat           string
	PDFLandscape        bool
	PDFMargin           string
	AllowCORS           bool
	WaitForNetworkIdle  bool
	InternalPrintFlags  bool
}

// Clip is a capture rectangle in CSS pixels.
type Clip struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Inset shrinks the capture area from each side. Segments of the --inset
// tuple map to top, right, bottom, left in that order.
type Inset struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// PDFMargin carries one margin per side, each keeping its original unit.
type PDFMargin struct {
	Top    flagparse.Margin `json:"top"`
	Right  flagparse.Margin `json:"right"`
	Bottom flagparse.Margin `json:"bottom"`
	Left   flagparse.Margin `json:"left"`
}

// PDFOptions groups the PDF-only settings. It is only populated when the
// requested output type is pdf.
type PDFOptions struct {
	Format    string     `json:"format"`
	Landscape bool       `json:"landscape"`
	Margin    *PDFMargin `json:"margin,omitempty"`
}

// Credentials is a basic-auth username/password pair.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CanonicalOptions is the fully validated, defaulted configuration handed to
// the capture engine. Boolean fields use positive polarity: the negated CLI
// flags (--no-javascript, --no-default-background, --no-block-ads) land here
// as JavaScript, DefaultBackground and BlockAds with their stated defaults.
type CanonicalOptions struct {
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	Type               string            `json:"type"`
	Quality            int               `json:"quality"`
	ScaleFactor        float64           `json:"scaleFactor"`
	EmulateDevice      string            `json:"emulateDevice,omitempty"`
	FullPage           bool              `json:"fullPage"`
	DefaultBackground  bool              `json:"defaultBackground"`
	Timeout            int               `json:"timeout"`
	Delay              int               `json:"delay"`
	WaitForElement     string            `json:"waitForElement,omitempty"`
	Element            string            `json:"element,omitempty"`
	HideElements       []string          `json:"hideElements"`
	RemoveElements     []string          `json:"removeElements"`
	ClickElement       string            `json:"clickElement,omitempty"`
	ScrollToElement    string            `json:"scrollToElement,omitempty"`
	DisableAnimations  bool              `json:"disableAnimations"`
	JavaScript         bool              `json:"javascript"`
	Modules            []string          `json:"modules"`
	Scripts            []string          `json:"scripts"`
	Styles             []string          `json:"styles"`
	Headers            map[string]string `json:"headers"`
	UserAgent          string            `json:"userAgent,omitempty"`
	Cookies            []string          `json:"cookies"`
	Authentication     *Credentials      `json:"authentication,omitempty"`
	DarkMode           bool              `json:"darkMode"`
	LaunchOptions      map[string]any    `json:"launchOptions,omitempty"`
	Inset              *Inset            `json:"inset,omitempty"`
	Clip               *Clip             `json:"clip,omitempty"`
	BlockAds           bool              `json:"blockAds"`
	LocalStorage       map[string]string `json:"localStorage"`
	Insecure           bool              `json:"insecure"`
	ThrowOnHTTPError   bool              `json:"throwOnHttpError"`
	LogConsole         bool              `json:"logConsole"`
	Referrer           string            `json:"referrer,omitempty"`
	PreloadLazyContent bool              `json:"preloadLazyContent"`
	AllowCORS          bool              `json:"allowCors"`
	WaitForNetworkIdle bool              `json:"waitForNetworkIdle"`
	PDF                *PDFOptions       `json:"pdf,omitempty"`
}

// DefaultOptions returns a CanonicalOptions with every field at its
// documented default. Lists and maps are non-nil so the diagnostic JSON dump
// is stable regardless of which flags were passed.
func DefaultOptions() *CanonicalOptions {
	return &CanonicalOptions{
		Width:             1280,
		Height:            800,
		Type:              "png",
		Quality:           100,
		ScaleFactor:       2,
		DefaultBackground: true,
		Timeout:           60,
		JavaScript:        true,
		BlockAds:          true,
		HideElements:      []string{},
		RemoveElements:    []string{},
		Modules:           []string{},
		Scripts:           []string{},
		Styles:            []string{},
		Cookies:           []string{},
		Headers:           map[string]string{},
		LocalStorage:      map[string]string{},
	}
}

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/page"

	"webshot/internal/flagparse"
)

// paperSize is a page size in inches.
type paperSize struct {
	width  float64
	height float64
}

// paperFormats maps PDF format names to paper sizes, portrait orientation.
var paperFormats = map[string]paperSize{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// printPDF renders the current page to PDF bytes.
func (e *Engine) printPDF(ctx context.Context) ([]byte, error) {
	pdf := e.opts.PDF

	size, ok := paperFormats[strings.ToLower(pdf.Format)]
	if !ok {
		return nil, fmt.Errorf("unknown pdf format %q", pdf.Format)
	}

	p := page.PrintToPDF().
		WithPaperWidth(size.width).
		WithPaperHeight(size.height).
		WithLandscape(pdf.Landscape).
		WithPrintBackground(e.opts.DefaultBackground)

	if m := pdf.Margin; m != nil {
		p = p.WithMarginTop(marginInches(m.Top)).
			WithMarginRight(marginInches(m.Right)).
			WithMarginBottom(marginInches(m.Bottom)).
			WithMarginLeft(marginInches(m.Left))
	}

	data, _, err := p.Do(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// marginInches converts a margin segment to inches, the unit PrintToPDF
// expects. Bare numbers are pixels at 96 dpi.
func marginInches(m flagparse.Margin) float64 {
	switch m.Unit {
	case "in":
		return m.Value
	case "cm":
		return m.Value / 2.54
	case "mm":
		return m.Value / 25.4
	default: // px and bare numbers
		return m.Value / 96
	}
}

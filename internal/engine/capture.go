package engine

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"webshot/internal/config"
)

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// captureAction takes the actual screenshot or PDF once the page is ready.
func (e *Engine) captureAction(buf *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if e.opts.Type == "pdf" {
			data, err := e.printPDF(ctx)
			if err != nil {
				return err
			}
			*buf = data
			return nil
		}

		clip, err := e.resolveClip(ctx)
		if err != nil {
			return err
		}

		p := page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormat(e.opts.Type)).
			WithFromSurface(true)
		if e.opts.Type != "png" {
			p = p.WithQuality(int64(e.opts.Quality))
		}
		if clip != nil {
			p = p.WithClip(clip)
		}
		if e.opts.FullPage {
			p = p.WithCaptureBeyondViewport(true)
		}

		data, err := p.Do(ctx)
		if err != nil {
			return err
		}
		*buf = data
		return nil
	})
}

type domRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// resolveClip computes the capture rectangle: the target element's box, the
// explicit --clip region, or the viewport/document shrunk by --inset. A nil
// clip means the whole surface.
func (e *Engine) resolveClip(ctx context.Context) (*page.Viewport, error) {
	o := e.opts

	var rect domRect
	switch {
	case o.Element != "":
		js := fmt.Sprintf(`(() => {
  const el = document.querySelector(%q);
  const r = el.getBoundingClientRect();
  return {x: r.x + window.scrollX, y: r.y + window.scrollY, width: r.width, height: r.height};
})()`, o.Element)
		if err := chromedp.Evaluate(js, &rect).Do(ctx); err != nil {
			return nil, fmt.Errorf("measuring element %q: %w", o.Element, err)
		}

	case o.Clip != nil:
		rect = domRect{
			X:      float64(o.Clip.X),
			Y:      float64(o.Clip.Y),
			Width:  float64(o.Clip.Width),
			Height: float64(o.Clip.Height),
		}

	case o.Inset != nil:
		if o.FullPage {
			js := `(() => {
  const el = document.documentElement;
  return {x: 0, y: 0, width: el.scrollWidth, height: el.scrollHeight};
})()`
			if err := chromedp.Evaluate(js, &rect).Do(ctx); err != nil {
				return nil, fmt.Errorf("measuring document: %w", err)
			}
		} else {
			rect = domRect{Width: float64(o.Width), Height: float64(o.Height)}
		}

	default:
		return nil, nil
	}

	if o.Inset != nil {
		rect = applyInset(rect, o.Inset)
		if rect.Width <= 0 || rect.Height <= 0 {
			return nil, fmt.Errorf("inset %+v leaves no area to capture", *o.Inset)
		}
	}

	return &page.Viewport{
		X:      rect.X,
		Y:      rect.Y,
		Width:  rect.Width,
		Height: rect.Height,
		Scale:  1,
	}, nil
}

func applyInset(r domRect, in *config.Inset) domRect {
	return domRect{
		X:      r.X + float64(in.Left),
		Y:      r.Y + float64(in.Top),
		Width:  r.Width - float64(in.Left+in.Right),
		Height: r.Height - float64(in.Top+in.Bottom),
	}
}

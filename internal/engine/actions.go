package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// adHostPatterns is a short blocklist applied unless --no-block-ads is set.
var adHostPatterns = []string{
	"*doubleclick.net*",
	"*googlesyndication.com*",
	"*adservice.google.*",
	"*googletagservices.com*",
	"*amazon-adsystem.com*",
	"*adnxs.com*",
	"*taboola.com*",
	"*outbrain.com*",
}

const disableAnimationsCSS = `*, *::before, *::after {
  animation: none !important;
  transition: none !important;
  scroll-behavior: auto !important;
}`

// preloadLazyJS scrolls through the document so lazy-loaded content gets a
// chance to load, then returns to the top.
const preloadLazyJS = `(async () => {
  const step = window.innerHeight;
  const height = document.body.scrollHeight;
  for (let y = 0; y < height; y += step) {
    window.scrollTo(0, y);
    await new Promise(resolve => setTimeout(resolve, 100));
  }
  window.scrollTo(0, 0);
})()`

// buildActions assembles the chromedp action list: session configuration,
// navigation, waits, and page mutations, in that order. The capture action
// is appended separately by the caller.
func (e *Engine) buildActions(targetURL string, idle *idleWaiter, docStatus *atomic.Int64) []chromedp.Action {
	o := e.opts
	var actions []chromedp.Action

	actions = append(actions, network.Enable())

	if o.BlockAds {
		actions = append(actions, network.SetBlockedURLS(adHostPatterns))
	}

	if headers := e.requestHeaders(); len(headers) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}

	for _, raw := range o.Cookies {
		actions = append(actions, cookieAction(raw, targetURL))
	}

	if !o.JavaScript {
		actions = append(actions, emulation.SetScriptExecutionDisabled(true))
	}

	if o.DarkMode {
		actions = append(actions, emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: "dark"},
		}))
	}

	if !o.DefaultBackground {
		actions = append(actions, emulation.SetDefaultBackgroundColorOverride().
			WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}))
	}

	if len(o.LocalStorage) > 0 {
		actions = append(actions, evaluateOnNewDocument(localStorageJS(o.LocalStorage)))
	}

	if dev, ok := LookupDevice(o.EmulateDevice); ok {
		actions = append(actions, chromedp.Emulate(dev))
	} else {
		actions = append(actions, chromedp.EmulateViewport(
			int64(o.Width), int64(o.Height), chromedp.EmulateScale(o.ScaleFactor)))
	}

	if o.WaitForNetworkIdle {
		actions = append(actions, page.SetLifecycleEventsEnabled(true))
	}

	actions = append(actions, navigateAction(targetURL, o.Referrer, idle))
	actions = append(actions, chromedp.WaitReady("body"))

	if o.ThrowOnHTTPError {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			if status := docStatus.Load(); status >= 400 {
				return fmt.Errorf("response code %d (%s)", status, http.StatusText(int(status)))
			}
			return nil
		}))
	}

	if o.WaitForNetworkIdle {
		actions = append(actions, chromedp.ActionFunc(idle.wait))
	}

	if o.WaitForElement != "" {
		actions = append(actions, chromedp.WaitVisible(o.WaitForElement, chromedp.ByQuery))
	}
	if o.Element != "" {
		actions = append(actions, chromedp.WaitVisible(o.Element, chromedp.ByQuery))
	}

	for _, style := range o.Styles {
		actions = append(actions, injectStyle(style))
	}
	for _, script := range o.Scripts {
		actions = append(actions, injectScript(script, false))
	}
	for _, module := range o.Modules {
		actions = append(actions, injectScript(module, true))
	}

	if len(o.HideElements) > 0 {
		actions = append(actions, addStyleTag(fmt.Sprintf(
			"%s { visibility: hidden !important; }", strings.Join(o.HideElements, ", "))))
	}
	if len(o.RemoveElements) > 0 {
		actions = append(actions, addStyleTag(fmt.Sprintf(
			"%s { display: none !important; }", strings.Join(o.RemoveElements, ", "))))
	}
	if o.DisableAnimations {
		actions = append(actions, addStyleTag(disableAnimationsCSS))
	}

	if o.ClickElement != "" {
		actions = append(actions, chromedp.Click(o.ClickElement, chromedp.ByQuery))
	}
	if o.ScrollToElement != "" {
		actions = append(actions, chromedp.ScrollIntoView(o.ScrollToElement, chromedp.ByQuery))
	}

	if o.PreloadLazyContent {
		actions = append(actions, chromedp.Evaluate(preloadLazyJS, nil, awaitPromise))
	}

	if o.Delay > 0 {
		actions = append(actions, chromedp.Sleep(time.Duration(o.Delay)*time.Second))
	}

	return actions
}

// requestHeaders merges custom headers with the basic-auth header, if any.
func (e *Engine) requestHeaders() network.Headers {
	headers := network.Headers{}
	for name, value := range e.opts.Headers {
		headers[name] = value
	}
	if auth := e.opts.Authentication; auth != nil {
		cred := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		headers["Authorization"] = "Basic " + cred
	}
	return headers
}

// navigateAction navigates to targetURL. When idle is non-nil it arms the
// waiter with the navigation's loader ID so the network-idle wait tracks the
// right document.
func navigateAction(targetURL, referrer string, idle *idleWaiter) chromedp.Action {
	if referrer == "" && idle == nil {
		return chromedp.Navigate(targetURL)
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		p := page.Navigate(targetURL)
		if referrer != "" {
			p = p.WithReferrer(referrer)
		}
		_, loaderID, errText, err := p.Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("page load failed: %s", errText)
		}
		if idle != nil {
			idle.arm(loaderID)
		}
		return nil
	})
}

// cookieAction sets one cookie from its raw Set-Cookie-style string.
func cookieAction(raw, pageURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		name, rest, found := strings.Cut(raw, "=")
		if !found || strings.TrimSpace(name) == "" {
			return fmt.Errorf("cookie %q is not in name=value form", raw)
		}
		parts := strings.Split(rest, ";")

		p := network.SetCookie(strings.TrimSpace(name), strings.TrimSpace(parts[0])).WithURL(pageURL)
		for _, attr := range parts[1:] {
			key, value, _ := strings.Cut(attr, "=")
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "domain":
				p = p.WithDomain(strings.TrimSpace(value))
			case "path":
				p = p.WithPath(strings.TrimSpace(value))
			case "secure":
				p = p.WithSecure(true)
			case "httponly":
				p = p.WithHTTPOnly(true)
			}
		}
		return p.Do(ctx)
	})
}

func evaluateOnNewDocument(source string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(source).Do(ctx)
		return err
	})
}

func localStorageJS(entries map[string]string) string {
	var sb strings.Builder
	for key, value := range entries {
		fmt.Fprintf(&sb, "window.localStorage.setItem(%q, %q);\n", key, value)
	}
	return sb.String()
}

// injectionSource classifies an injection flag value: a URL to reference, a
// file whose contents to inline, or inline code as-is.
func injectionSource(value string) (code string, srcURL string) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return "", value
	}
	if data, err := os.ReadFile(value); err == nil {
		return string(data), ""
	}
	return value, ""
}

func injectStyle(value string) chromedp.Action {
	code, srcURL := injectionSource(value)
	if srcURL != "" {
		js := fmt.Sprintf(`(() => {
  const el = document.createElement('link');
  el.rel = 'stylesheet';
  el.href = %q;
  document.head.appendChild(el);
})()`, srcURL)
		return chromedp.Evaluate(js, nil)
	}
	return addStyleTag(code)
}

func addStyleTag(css string) chromedp.Action {
	js := fmt.Sprintf(`(() => {
  const el = document.createElement('style');
  el.textContent = %q;
  document.head.appendChild(el);
})()`, css)
	return chromedp.Evaluate(js, nil)
}

func injectScript(value string, module bool) chromedp.Action {
	scriptType := "text/javascript"
	if module {
		scriptType = "module"
	}
	code, srcURL := injectionSource(value)

	var js string
	if srcURL != "" {
		js = fmt.Sprintf(`new Promise((resolve, reject) => {
  const el = document.createElement('script');
  el.type = %q;
  el.src = %q;
  el.onload = resolve;
  el.onerror = () => reject(new Error('failed to load ' + el.src));
  document.head.appendChild(el);
})`, scriptType, srcURL)
	} else {
		js = fmt.Sprintf(`Promise.resolve().then(() => {
  const el = document.createElement('script');
  el.type = %q;
  el.textContent = %q;
  document.head.appendChild(el);
})`, scriptType, code)
	}
	return chromedp.Evaluate(js, nil, awaitPromise)
}

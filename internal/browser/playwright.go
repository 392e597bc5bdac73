package browser

import (
	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
)

type LaunchOptions struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// PlaywrightManager owns the playwright driver and one Chromium instance.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    LaunchOptions
}

func NewPlaywright(opts LaunchOptions) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "start playwright")
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "launch chromium")
	}

	return &PlaywrightManager{pw: pw, browser: b, opts: opts}, nil
}

// NewContext creates a browser context with the configured viewport and user
// agent, seeded with cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if pm.opts.ViewportWidth > 0 && pm.opts.ViewportHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: pm.opts.ViewportWidth, Height: pm.opts.ViewportHeight}
	}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}

	bctx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, errors.Wrap(err, "create browser context")
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			_ = bctx.Close()
			return nil, errors.Wrap(err, "add cookies")
		}
	}
	return bctx, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "close browser"))
		}
		pm.browser = nil
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "stop playwright"))
		}
		pm.pw = nil
	}
	return errs
}

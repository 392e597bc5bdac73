package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-job-extractor/internal/config"
	"go-job-extractor/internal/models"
	"go-job-extractor/utils"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// DetailTimeoutError is returned by OpenDetail when the detail panel does not
// become visible in time.
type DetailTimeoutError struct {
	Slot    int
	Timeout time.Duration
	Err     error
}

func (e *DetailTimeoutError) Error() string {
	return fmt.Sprintf("slot %d: job details did not load within %s", e.Slot, e.Timeout)
}

func (e *DetailTimeoutError) Unwrap() error { return e.Err }

// Card is one job card captured by ListCards. Cards are never re-queried.
type Card struct {
	Index  int
	handle playwright.ElementHandle
}

// Session drives a single Chromium page over the search results.
type Session struct {
	cfg      config.BrowserConfig
	sel      config.Selectors
	log      *zap.SugaredLogger
	debugger *utils.ScreenshotDebugger

	manager *PlaywrightManager
	bctx    playwright.BrowserContext
	page    playwright.Page
	closed  bool
}

func NewSession(cfg config.BrowserConfig, sel config.Selectors, log *zap.SugaredLogger) *Session {
	s := &Session{cfg: cfg, sel: sel, log: log}
	if cfg.DebugScreenshots {
		s.debugger = utils.NewScreenshotDebugger(cfg.ScreenshotDir, log)
	}
	return s
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// Open launches the browser, loads searchURL, clears popups and waits for the
// job cards. Every error returned here ends the run.
func (s *Session) Open(ctx context.Context, searchURL string) error {
	if s.page != nil {
		return errors.New("browser session already open")
	}

	cookies, err := LoadCookies(s.cfg.CookiesPath)
	if err != nil {
		s.log.Warnf("⚠️ Could not load cookies: %v. Continuing.", err)
	} else if len(cookies) > 0 {
		s.log.Infof("🍪 Loaded %d cookies", len(cookies))
	}

	s.manager, err = NewPlaywright(LaunchOptions{
		Headless:       s.cfg.Headless,
		UserAgent:      s.cfg.UserAgent,
		ViewportWidth:  s.cfg.ViewportWidth,
		ViewportHeight: s.cfg.ViewportHeight,
	})
	if err != nil {
		return err
	}

	s.bctx, err = s.manager.NewContext(cookies)
	if err != nil {
		return err
	}

	s.page, err = s.bctx.NewPage()
	if err != nil {
		return errors.Wrap(err, "create page")
	}
	s.log.Info("✅ Browser initialized successfully!")

	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.Infof("🌐 Visiting search page: %s", searchURL)
	if _, err := s.page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(s.cfg.NavigationTimeout),
	}); err != nil {
		return errors.Wrap(err, "load search page")
	}

	s.dismiss(s.sel.CookieAccept, "cookie banner")
	s.dismiss(s.sel.JobAlertClose, "job alert modal")

	if s.cfg.Humanize {
		if err := MouseJiggle(ctx, s.page); err != nil {
			s.log.Debugf("mouse jiggle: %v", err)
		}
		if err := HumanScroll(ctx, s.page); err != nil {
			s.log.Debugf("human scroll: %v", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.page.WaitForSelector(s.sel.JobCard, playwright.PageWaitForSelectorOptions{
		Timeout: ms(s.cfg.NavigationTimeout),
	}); err != nil {
		s.debugCapture("no_job_cards", "Job cards did not appear")
		return errors.Wrap(err, "job cards not found")
	}
	return nil
}

// dismiss clicks selector if it shows up within the popup timeout.
func (s *Session) dismiss(selector, what string) {
	if selector == "" {
		return
	}
	el, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: ms(s.cfg.PopupTimeout),
	})
	if err != nil || el == nil {
		s.log.Debugf("No %s shown", what)
		return
	}
	if err := el.Click(); err != nil {
		s.log.Warnf("⚠️ Failed to dismiss %s: %v", what, err)
		return
	}
	s.log.Infof("🧹 Dismissed %s", what)
}

// ListCards snapshots the job cards currently on the page.
func (s *Session) ListCards(ctx context.Context) ([]Card, error) {
	if s.page == nil {
		return nil, errors.New("browser session is not open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := s.page.QuerySelectorAll(s.sel.JobCard)
	if err != nil {
		return nil, errors.Wrap(err, "query job cards")
	}
	cards := make([]Card, len(handles))
	for i, h := range handles {
		cards[i] = Card{Index: i, handle: h}
	}
	s.log.Infof("📋 Found %d job cards", len(cards))
	return cards, nil
}

// OpenDetail clicks the card and waits for the description panel. slot is
// the 1-based slot number used in errors and debug file names.
func (s *Session) OpenDetail(ctx context.Context, card Card, slot int) error {
	if card.handle == nil {
		return errors.Newf("slot %d: card has no element", slot)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := card.handle.Click(); err != nil {
		return errors.Wrapf(err, "slot %d: click job card", slot)
	}

	_, err := s.page.WaitForSelector(s.sel.JobDescription, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(s.cfg.DetailTimeout),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			s.debugCapture(fmt.Sprintf("detail_timeout_slot_%d", slot), "Job details did not load")
			return &DetailTimeoutError{Slot: slot, Timeout: s.cfg.DetailTimeout, Err: err}
		}
		return errors.Wrapf(err, "slot %d: wait for job details", slot)
	}

	return Sleep(ctx, s.cfg.DetailSettle)
}

// CaptureMaterial reads everything the extractor needs from the open detail
// panel. HTML and screenshot failures are logged and leave the field empty.
func (s *Session) CaptureMaterial(ctx context.Context, card Card) (models.RawListingMaterial, error) {
	if err := ctx.Err(); err != nil {
		return models.RawListingMaterial{}, err
	}
	material := models.RawListingMaterial{
		Link:           s.page.URL(),
		FallbackSalary: models.NotAvailable,
	}

	html, err := s.page.Locator(s.sel.JobDescription).First().Evaluate("el => el.outerHTML", nil)
	if err != nil {
		s.log.Warnf("⚠️ Could not read job description HTML: %v", err)
	} else if str, ok := html.(string); ok {
		material.HTML = str
	}

	shot, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		s.log.Warnf("⚠️ Could not take screenshot: %v", err)
	} else {
		material.Screenshot = shot
	}

	material.FallbackSalary = s.cardSalary(card)
	return material, nil
}

func (s *Session) cardSalary(card Card) string {
	if card.handle == nil || s.sel.SalaryInCard == "" {
		return models.NotAvailable
	}
	el, err := card.handle.QuerySelector(s.sel.SalaryInCard)
	if err != nil || el == nil {
		s.log.Infof("⚠️ Salary not found in job card %d", card.Index+1)
		return models.NotAvailable
	}
	text, err := el.InnerText()
	if err != nil || strings.TrimSpace(text) == "" {
		return models.NotAvailable
	}
	return strings.TrimSpace(text)
}

func (s *Session) debugCapture(name, message string) {
	if s.debugger == nil || s.page == nil {
		return
	}
	_, _ = s.debugger.CaptureAndLog(s.page, name, message)
}

// Close releases the page, context, browser and driver. Safe to call twice.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "close page"))
		}
	}
	if s.bctx != nil {
		if err := s.bctx.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "close browser context"))
		}
	}
	if s.manager != nil {
		errs = errors.CombineErrors(errs, s.manager.Close())
	}
	s.page, s.bctx, s.manager = nil, nil, nil
	s.log.Info("🔒 Browser closed")
	return errs
}

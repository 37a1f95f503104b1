package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

const hideWebdriverJS = `() => Object.defineProperty(navigator, 'webdriver', { get: () => undefined })`

// Session is one browser shared by every target of a run.
type Session struct {
	config        config.PortalConfig
	downloadDir   string
	screenshotDir string
	launcher      *launcher.Launcher
	browser       *rod.Browser
	page          *rod.Page
	logger        zerolog.Logger
}

// NewSession launches Chrome with downloads routed into downloadDir.
func NewSession(ctx context.Context, cfg config.PortalConfig, downloadDir, screenshotDir string, logger zerolog.Logger) (*Session, error) {
	logger = logger.With().Str("component", "BrowserSession").Logger()
	if cfg.URL == "" {
		return nil, common.NewValidationError("portal.url", cfg.URL, "portal URL is not configured")
	}

	absDownload, err := filepath.Abs(downloadDir)
	if err != nil {
		return nil, common.WrapError(err, "failed to resolve download directory")
	}

	l := launcher.New().Headless(cfg.Headless)
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}
	l = l.
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	if cfg.UserAgent != "" {
		l = l.Set("user-agent", cfg.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	s := &Session{
		config:        cfg,
		downloadDir:   absDownload,
		screenshotDir: screenshotDir,
		launcher:      l,
		browser:       browser,
		logger:        logger,
	}

	if err := (proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: absDownload,
	}).Call(browser); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to allow downloads: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if _, err := page.EvalOnNewDocument(hideWebdriverJS); err != nil {
		logger.Warn().Err(err).Msg("Failed to hide navigator.webdriver")
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  cfg.WindowWidth,
		Height: cfg.WindowHeight,
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to set viewport")
	}
	s.page = page

	logger.Info().Str("download_dir", absDownload).Bool("headless", cfg.Headless).Msg("Browser session started")
	return s, nil
}

// Trigger performs the clicks that start the download of one target.
// It returns once the final click went through; the file itself is left to the watcher.
func (s *Session) Trigger(ctx context.Context, target models.DownloadTarget) error {
	logger := s.logger.With().Str("target", target.ID).Logger()
	page := s.page.Context(ctx)

	err := s.trigger(ctx, page, target, logger)
	if err != nil && s.config.ScreenshotOnFailure {
		if path, shotErr := s.Screenshot(target.ID); shotErr == nil {
			logger.Info().Str("screenshot", path).Msg("Saved failure screenshot")
		}
	}
	return err
}

func (s *Session) trigger(ctx context.Context, page *rod.Page, target models.DownloadTarget, logger zerolog.Logger) error {
	if err := s.navigate(page, s.config.URL); err != nil {
		return err
	}

	entry := "#" + target.EntryButtonID
	if err := s.click(page, entry, ""); err != nil {
		return fmt.Errorf("failed to click entry button %s: %w", entry, err)
	}
	logger.Debug().Str("button", entry).Msg("Clicked entry button")

	if target.RequiresLogin {
		if err := s.loginIfNeeded(ctx, page, logger); err != nil {
			return err
		}
	}
	if target.TriggeredByEntryButton() {
		return nil
	}

	if err := page.Timeout(s.config.PageLoadTimeout()).WaitLoad(); err != nil {
		logger.Warn().Err(err).Msg("Page did not finish loading, continuing")
	}
	inspector, err := s.inspect(page)
	if err != nil {
		return err
	}

	if target.SelectCheckboxes {
		s.tickCheckboxes(page, inspector, logger)
	}

	idx, ok := inspector.FindLocator(target.DownloadLocators)
	if !ok {
		return fmt.Errorf("no download control found for %s", target.ID)
	}
	loc := target.DownloadLocators[idx]
	if err := s.click(page, loc.CSS, loc.Text); err != nil {
		return fmt.Errorf("failed to click download control %s: %w", loc.CSS, err)
	}
	logger.Info().Str("selector", loc.CSS).Str("text", loc.Text).Msg("Download triggered")
	return nil
}

func (s *Session) navigate(page *rod.Page, url string) error {
	p := page.Timeout(s.config.PageLoadTimeout())
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("page load timeout for %s: %w", url, err)
	}
	return nil
}

func (s *Session) inspect(page *rod.Page) (*PageInspector, error) {
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}
	return NewPageInspector(html)
}

// loginIfNeeded fills the login form when the portal redirected to it.
func (s *Session) loginIfNeeded(ctx context.Context, page *rod.Page, logger zerolog.Logger) error {
	if err := page.Timeout(s.config.PageLoadTimeout()).WaitLoad(); err != nil {
		logger.Warn().Err(err).Msg("Page did not finish loading before login check")
	}
	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("failed to read page URL: %w", err)
	}
	if !IsLoginURL(info.URL) {
		return nil
	}
	inspector, err := s.inspect(page)
	if err != nil {
		return err
	}
	if !inspector.HasLoginForm() {
		logger.Warn().Str("url", info.URL).Msg("Login URL without login form")
		return nil
	}
	if s.config.Username == "" || s.config.Password == "" {
		return common.NewValidationError("portal.username", s.config.Username, "portal credentials are required to log in")
	}

	p := page.Timeout(s.config.ElementTimeout())
	if err := s.fill(p, UsernameSelector, s.config.Username); err != nil {
		return err
	}
	if err := s.fill(p, PasswordSelector, s.config.Password); err != nil {
		return err
	}
	if err := s.click(page, LoginButtonCSS, ""); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}

	if err := s.waitLeaveLogin(ctx, page); err != nil {
		return err
	}
	logger.Info().Msg("Logged in to portal")
	return nil
}

func (s *Session) fill(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("field %s not found: %w", selector, err)
	}
	// Typing replaces the selected text.
	_ = el.SelectAllText()
	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// waitLeaveLogin polls the page URL until it no longer points at the login page.
func (s *Session) waitLeaveLogin(ctx context.Context, page *rod.Page) error {
	deadline := time.Now().Add(s.config.LoginTimeout())
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		info, err := page.Info()
		if err == nil && !IsLoginURL(info.URL) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("still on login page after %s", s.config.LoginTimeout())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) tickCheckboxes(page *rod.Page, inspector *PageInspector, logger zerolog.Logger) {
	positions := inspector.UncheckedBoxes(CheckboxContainer)
	if len(positions) == 0 {
		return
	}
	boxes, err := page.Elements(CheckboxContainer + " " + CheckboxQuery)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list checkboxes")
		return
	}
	ticked := 0
	for _, pos := range positions {
		if pos >= len(boxes) {
			break
		}
		if err := clickElement(boxes[pos]); err != nil {
			logger.Warn().Err(err).Int("position", pos).Msg("Failed to tick checkbox")
			continue
		}
		ticked++
	}
	logger.Info().Int("ticked", ticked).Msg("Selected checkboxes")
}

// click finds the element and clicks it, optionally requiring its text to contain text.
func (s *Session) click(page *rod.Page, css, text string) error {
	p := page.Timeout(s.config.ElementTimeout())
	var (
		el  *rod.Element
		err error
	)
	if text != "" {
		el, err = p.ElementR(css, "/"+regexp.QuoteMeta(text)+"/i")
	} else {
		el, err = p.Element(css)
	}
	if err != nil {
		return err
	}
	return clickElement(el.CancelTimeout())
}

// clickElement tries a native click first and falls back to a JS click,
// which gets through overlays that intercept the pointer.
func clickElement(el *rod.Element) error {
	_ = el.ScrollIntoView()
	nativeErr := el.Click(proto.InputMouseButtonLeft, 1)
	if nativeErr == nil {
		return nil
	}
	if _, err := el.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("native click: %v; js click: %w", nativeErr, err)
	}
	return nil
}

// Screenshot saves the current page as screenshot_<name>_<timestamp>.png.
func (s *Session) Screenshot(name string) (string, error) {
	if err := os.MkdirAll(s.screenshotDir, 0755); err != nil {
		return "", err
	}
	data, err := s.page.Screenshot(true, nil)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	path := filepath.Join(s.screenshotDir, ScreenshotName(name, time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ScreenshotName builds a screenshot file name that the download watcher ignores.
func ScreenshotName(name string, at time.Time) string {
	clean := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("screenshot_%s_%s.png", clean, at.Format("20060102-150405"))
}

// Close shuts the browser down and removes the launcher's profile.
func (s *Session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	s.logger.Debug().Msg("Browser session closed")
	return err
}

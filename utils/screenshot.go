package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// ScreenshotDebugger saves full-page screenshots when a browser wait fails
type ScreenshotDebugger struct {
	outputDir string
	log       *zap.SugaredLogger
}

// NewScreenshotDebugger uses logs/screenshots when dir is empty.
func NewScreenshotDebugger(dir string, log *zap.SugaredLogger) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenshotDebugger{outputDir: dir, log: log}
}

// CaptureAndLog writes <name>_<timestamp>.png and returns its path.
func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create screenshot dir")
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Infof("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Warnf("⚠️ Failed to capture screenshot: %v", err)
		return "", errors.Wrap(err, "debug screenshot")
	}

	s.log.Infof("   Screenshot saved: %s", path)
	return path, nil
}

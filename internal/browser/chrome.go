package browser

import (
	"os"
	"os/exec"

	"github.com/rgl/hp-drivers-scraper/internal/logger"
)

// chromePathEnv overrides Chrome discovery.
const chromePathEnv = "CHROME_PATH"

// Chrome/Chromium binary names and locations, in lookup order.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the Chrome binary named by $CHROME_PATH, or the
// first known binary found on the system. It returns "" when nothing is
// found, leaving the choice to chromedp.
func FindChromePath() string {
	if p := os.Getenv(chromePathEnv); p != "" {
		if path, err := exec.LookPath(p); err == nil {
			logger.Debug("using Chrome binary from environment", "path", path)
			return path
		}
		logger.Warn("ignoring unusable Chrome binary from environment", "env", chromePathEnv, "path", p)
	}

	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}

	logger.Warn("no Chrome binary found, falling back to chromedp discovery")
	return ""
}

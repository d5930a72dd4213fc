// Package browser manages the Chrome process used to drive the support
// pages, and exposes its tabs as pages.
package browser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Config holds the browser launch settings.
type Config struct {
	ViewportWidth  int
	ViewportHeight int

	// Foreground shows the browser window instead of running headless.
	Foreground bool
	// DevTools opens the developer tools of every tab. Implies Foreground.
	DevTools bool
	// SlowMotion delays every page operation by this amount.
	SlowMotion time.Duration

	ChromePath string    // Chrome binary; discovered when empty
	DumpOutput io.Writer // receives the browser process stdout/stderr
}

// DefaultViewport is the viewport used when none is configured.
const DefaultViewport = "1280x720"

// DefaultSlowMotion is the per-operation delay used in debug mode.
const DefaultSlowMotion = 250 * time.Millisecond

// DefaultConfig returns a headless configuration with the default viewport.
func DefaultConfig() Config {
	w, h, _ := ParseViewport(DefaultViewport)
	return Config{
		ViewportWidth:  w,
		ViewportHeight: h,
	}
}

// ErrInvalidViewport is returned for a malformed viewport size.
var ErrInvalidViewport = errors.New("invalid viewport size")

// ParseViewport parses a WIDTHxHEIGHT size such as 1280x720.
func ParseViewport(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q (want WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	width, werr := strconv.Atoi(ws)
	height, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q (want positive WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	return width, height, nil
}

// flags returns the Chrome command line switches for c, on top of the
// chromedp defaults. A false value removes the switch.
func (c Config) flags() map[string]any {
	headless := !c.Foreground && !c.DevTools
	f := map[string]any{
		"start-maximized":        true,
		"headless":               headless,
		"hide-scrollbars":        headless,
		"mute-audio":             headless,
		"disable-dev-shm-usage":  true,
		"no-sandbox":             true,
		"disable-popup-blocking": true,
		"disable-notifications":  true,
		"window-size":            fmt.Sprintf("%d,%d", c.ViewportWidth, c.ViewportHeight),
	}
	if c.DevTools {
		f["auto-open-devtools-for-tabs"] = true
	}
	return f
}

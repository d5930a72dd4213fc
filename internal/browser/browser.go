package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/rgl/hp-drivers-scraper/internal/logger"
)

// Browser is a running Chrome process.
type Browser struct {
	config      Config
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// Launch starts Chrome. The browser lives until Close is called or ctx is
// cancelled.
func Launch(ctx context.Context, cfg Config) (*Browser, error) {
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		def := DefaultConfig()
		cfg.ViewportWidth, cfg.ViewportHeight = def.ViewportWidth, def.ViewportHeight
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	flags := cfg.flags()
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	if cfg.DumpOutput != nil {
		opts = append(opts, chromedp.CombinedOutput(cfg.DumpOutput))
	}

	logger.Debug("launching browser",
		"path", chromePath,
		"headless", flags["headless"],
		"devtools", cfg.DevTools,
		"slow_motion", cfg.SlowMotion)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Printf("chromedp")),
		chromedp.WithErrorf(logger.Printf("chromedp-error")),
	)

	// An empty run starts the browser process and its first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Browser{
		config:      cfg,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

// Version returns the browser product string, e.g. "HeadlessChrome/120.0.6099.109".
func (b *Browser) Version(ctx context.Context) (string, error) {
	var product string
	err := run(ctx, b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = cdpbrowser.GetVersion().Do(cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Browser))
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("get browser version: %w", err)
	}
	return product, nil
}

// NewPage opens a tab with the configured viewport.
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	p := &Page{
		ctx:        tabCtx,
		cancel:     cancel,
		slowMotion: b.config.SlowMotion,
	}

	// The first Run attaches the tab and ties its lifetime to the context it
	// is given, so it must be the tab context itself and not a child of it.
	viewport := chromedp.EmulateViewport(int64(b.config.ViewportWidth), int64(b.config.ViewportHeight))
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(tabCtx, viewport); err != nil {
		cancel()
		return nil, fmt.Errorf("open page: %w", err)
	}

	logger.Debug("page opened", "viewport", fmt.Sprintf("%dx%d", b.config.ViewportWidth, b.config.ViewportHeight))
	return p, nil
}

// Close terminates the browser process. It is safe to call more than once.
func (b *Browser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		logger.Debug("closing browser")
		err = chromedp.Cancel(b.ctx)
		b.cancel()
		b.allocCancel()
	})
	return err
}

// Page is a browser tab.
type Page struct {
	ctx        context.Context
	cancel     context.CancelFunc
	slowMotion time.Duration
}

// Navigate loads url and waits for the page load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.do(ctx, chromedp.Navigate(url))
}

// WaitReady waits until sel matches an element in the DOM.
func (p *Page) WaitReady(ctx context.Context, sel string) error {
	return p.do(ctx, chromedp.WaitReady(sel, chromedp.ByQuery))
}

// WaitVisible waits until sel matches a visible element.
func (p *Page) WaitVisible(ctx context.Context, sel string) error {
	return p.do(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// Click clicks the first visible element matching sel. It waits for the
// element to become visible, so a missing element blocks until ctx is done.
func (p *Page) Click(ctx context.Context, sel string) error {
	return p.do(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

// OuterHTML returns the outer HTML of the first element matching sel.
func (p *Page) OuterHTML(ctx context.Context, sel string) (string, error) {
	var html string
	if err := p.do(ctx, chromedp.OuterHTML(sel, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Sleep pauses for d or until ctx is done.
func (p *Page) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// FullScreenshot captures the whole page as PNG.
func (p *Page) FullScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// Quality 100 makes chromedp capture PNG instead of JPEG.
	if err := run(ctx, p.ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the tab.
func (p *Page) Close() {
	p.cancel()
}

func (p *Page) do(ctx context.Context, action chromedp.Action) error {
	if p.slowMotion > 0 {
		if err := sleep(ctx, p.slowMotion); err != nil {
			return err
		}
	}
	return run(ctx, p.ctx, action)
}

// run executes actions on the chromedp context tab, stopping them when ctx
// is done. tab must stay the parent so the actions reach the right target.
func run(ctx, tab context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

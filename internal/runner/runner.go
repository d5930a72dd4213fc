// Package runner scrapes a list of products one after the other, saving
// their drivers and a screenshot of each product page.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rgl/hp-drivers-scraper/internal/catalog"
	"github.com/rgl/hp-drivers-scraper/internal/hpsupport"
	"github.com/rgl/hp-drivers-scraper/internal/logger"
	"github.com/rgl/hp-drivers-scraper/internal/output"
)

// Page is a browser tab able to run the download flow and to capture itself.
type Page interface {
	hpsupport.Page
	FullScreenshot(ctx context.Context) ([]byte, error)
}

// Options controls where results go.
type Options struct {
	DataDir       string
	ScreenshotDir string
	Format        output.Format
	// Timeout bounds the scrape of a single product. Zero means no limit.
	Timeout time.Duration
}

// DefaultOptions mirrors the historical layout: data/<product>.json and
// <product>.png in the working directory.
func DefaultOptions() Options {
	return Options{
		DataDir:       "data",
		ScreenshotDir: ".",
		Format:        output.FormatJSON,
		Timeout:       5 * time.Minute,
	}
}

// Result summarizes one scraped product.
type Result struct {
	Product        catalog.Product
	Drivers        int
	DataPath       string
	ScreenshotPath string
}

// Run scrapes products in order on page. It stops at the first product that
// fails; that product page is still captured.
func Run(ctx context.Context, page Page, products []catalog.Product, opts Options) ([]Result, error) {
	if opts.Format == "" {
		opts.Format = output.FormatJSON
	}

	results := make([]Result, 0, len(products))
	for _, p := range products {
		res, err := scrapeProduct(ctx, page, p, opts)
		if err != nil {
			return results, fmt.Errorf("product %s: %w", p.Slug, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func scrapeProduct(ctx context.Context, page Page, p catalog.Product, opts Options) (res Result, err error) {
	log := logger.With("product", p.Slug)
	res = Result{
		Product:        p,
		DataPath:       filepath.Join(opts.DataDir, p.Slug+opts.Format.Extension()),
		ScreenshotPath: filepath.Join(opts.ScreenshotDir, p.Slug+".png"),
	}

	defer func() {
		log.Info("taking a screenshot", "path", res.ScreenshotPath)
		size, shotErr := saveScreenshot(ctx, page, res.ScreenshotPath)
		if shotErr != nil {
			log.Error("screenshot failed", "path", res.ScreenshotPath, "error", shotErr)
			if err == nil {
				err = shotErr
			}
			return
		}
		log.Debug("screenshot saved", "path", res.ScreenshotPath, "size", humanize.Bytes(uint64(size)))
	}()

	scrapeCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		scrapeCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log.Info("scraping", "url", p.URL)
	drivers, err := hpsupport.GetDrivers(scrapeCtx, page, p.URL)
	if err != nil {
		return res, err
	}
	res.Drivers = len(drivers)

	log.Info("saving", "path", res.DataPath, "drivers", len(drivers))
	size, err := output.WriteFile(res.DataPath, opts.Format, drivers)
	if err != nil {
		return res, err
	}
	log.Debug("data saved", "path", res.DataPath, "size", humanize.Bytes(uint64(size)))

	return res, nil
}

func saveScreenshot(ctx context.Context, page Page, path string) (int, error) {
	// The scrape context may have expired; a failed page is the one worth
	// keeping a picture of.
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	png, err := page.FullScreenshot(shotCtx)
	if err != nil {
		return 0, fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return 0, fmt.Errorf("write screenshot: %w", err)
	}
	return len(png), nil
}

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgl/hp-drivers-scraper/internal/browser"
	"github.com/rgl/hp-drivers-scraper/internal/catalog"
	"github.com/rgl/hp-drivers-scraper/internal/logger"
	"github.com/rgl/hp-drivers-scraper/internal/output"
	"github.com/rgl/hp-drivers-scraper/internal/runner"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the driver lists of the configured products",
	Long: `Open every product support page, reject the cookie dialog when there
is one, select the most recent OS, show all drivers and save the downloads
table to <output-dir>/<product>.json. A full-page screenshot of each product
page is saved to <screenshot-dir>/<product>.png, also when scraping fails.

To troubleshoot, use --debug: the browser runs in the foreground with the
developer tools open and every page action is slowed down.`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Browser settings
	flags.String("viewport-size", browser.DefaultViewport, "browser viewport size")
	flags.String("chrome-path", "", "Chrome binary (default: $CHROME_PATH or auto-detected)")
	flags.Duration("slow-motion", browser.DefaultSlowMotion, "delay before every page action in --debug mode")
	flags.Bool("dump-browser-output", false, "copy the browser process output to stderr")

	// Output settings
	defaults := runner.DefaultOptions()
	flags.String("output-dir", defaults.DataDir, "directory for the data files")
	flags.String("screenshot-dir", defaults.ScreenshotDir, "directory for the page screenshots")
	flags.String("format", string(defaults.Format), "data file format: json, jsonl, yaml")

	// Scrape settings
	flags.StringSliceP("product", "p", nil, "only scrape this product slug (can be repeated)")
	flags.Duration("timeout", defaults.Timeout, "timeout for scraping a single product (0=none)")

	for key, name := range map[string]string{
		"viewport_size":       "viewport-size",
		"chrome_path":         "chrome-path",
		"slow_motion":         "slow-motion",
		"dump_browser_output": "dump-browser-output",
		"output_dir":          "output-dir",
		"screenshot_dir":      "screenshot-dir",
		"format":              "format",
		"product":             "product",
		"timeout":             "timeout",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	products, err := loadProducts(viper.GetViper())
	if err != nil {
		logger.Error("failed to load products", "error", err)
		return err
	}
	products, err = catalog.Select(products, viper.GetStringSlice("product"))
	if err != nil {
		logger.Error("failed to select products", "error", err)
		return err
	}

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		logger.Error("invalid format", "error", err)
		return err
	}

	cfg, err := browserConfig(viper.GetViper())
	if err != nil {
		logger.Error("invalid browser settings", "error", err)
		return err
	}

	logger.Info("launching the browser")
	b, err := browser.Launch(ctx, cfg)
	if err != nil {
		logger.Error("failed to launch the browser", "error", err)
		return err
	}
	defer func() { _ = b.Close() }()

	logger.Info("creating a new browser page")
	page, err := b.NewPage(ctx)
	if err != nil {
		logger.Error("failed to create the browser page", "error", err)
		return err
	}
	defer page.Close()

	if v, err := b.Version(ctx); err == nil {
		logger.Info("launched the browser", "version", v)
	} else {
		logger.Warn("failed to get the browser version", "error", err)
	}

	opts := runner.Options{
		DataDir:       viper.GetString("output_dir"),
		ScreenshotDir: viper.GetString("screenshot_dir"),
		Format:        format,
		Timeout:       viper.GetDuration("timeout"),
	}

	start := time.Now()
	results, err := runner.Run(ctx, page, products, opts)
	if err != nil {
		logger.Error("scrape failed", "scraped", len(results), "error", err)
		return err
	}

	total := 0
	for _, r := range results {
		total += r.Drivers
	}
	logger.Info("scrape complete",
		"products", len(results),
		"drivers", total,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// browserConfig assembles the browser settings from v. Debug mode runs the
// browser in the foreground with devtools and slow motion.
func browserConfig(v *viper.Viper) (browser.Config, error) {
	viewport := v.GetString("viewport_size")
	if viewport == "" {
		viewport = browser.DefaultViewport
	}
	w, h, err := browser.ParseViewport(viewport)
	if err != nil {
		return browser.Config{}, err
	}

	cfg := browser.Config{
		ViewportWidth:  w,
		ViewportHeight: h,
		ChromePath:     v.GetString("chrome_path"),
	}
	if v.GetBool("debug") {
		cfg.Foreground = true
		cfg.DevTools = true
		cfg.SlowMotion = v.GetDuration("slow_motion")
	}
	if v.GetBool("dump_browser_output") {
		cfg.DumpOutput = os.Stderr
	}
	return cfg, nil
}

package runner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rgl/hp-drivers-scraper/internal/catalog"
	"github.com/rgl/hp-drivers-scraper/internal/hpsupport"
	"github.com/rgl/hp-drivers-scraper/internal/output"
)

const tableHTML = `<table id="download-table"><tbody>
<tr>
  <td data-sort="version">00.02.61</td>
  <td data-sort="date">Nov 8, 2022</td>
  <td><a title="Download" utilitytitle="HP EliteDesk 800 G2 DM System BIOS (N21)" href="https://ftp.hp.com/sp143035.exe">Download</a></td>
</tr>
</tbody></table>`

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// fakePage serves the same downloads table for every URL, failing
// navigation to the URLs listed in failURLs.
type fakePage struct {
	failURLs  map[string]bool
	shotErr   error
	navigated []string
	shots     int
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if p.failURLs[url] {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	return nil
}

// No cookie dialog: the consent wait always times out.
func (p *fakePage) WaitReady(context.Context, string) error { return context.DeadlineExceeded }

func (p *fakePage) WaitVisible(context.Context, string) error  { return nil }
func (p *fakePage) Click(context.Context, string) error        { return nil }
func (p *fakePage) Sleep(context.Context, time.Duration) error { return nil }

func (p *fakePage) OuterHTML(context.Context, string) (string, error) {
	return tableHTML, nil
}

func (p *fakePage) FullScreenshot(context.Context) ([]byte, error) {
	p.shots++
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return pngMagic, nil
}

var products = []catalog.Product{
	{Slug: "first-product", URL: "https://support.hp.com/first"},
	{Slug: "second-product", URL: "https://support.hp.com/second"},
}

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DataDir = filepath.Join(dir, "data")
	opts.ScreenshotDir = filepath.Join(dir, "shots")
	return opts
}

func TestRun_SavesDataAndScreenshots(t *testing.T) {
	page := &fakePage{}
	opts := testOptions(t)

	results, err := Run(context.Background(), page, products, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	for _, res := range results {
		wantData := filepath.Join(opts.DataDir, res.Product.Slug+".json")
		if res.DataPath != wantData {
			t.Errorf("data path = %q, want %q", res.DataPath, wantData)
		}

		b, err := os.ReadFile(res.DataPath)
		if err != nil {
			t.Fatalf("read data: %v", err)
		}
		var drivers []hpsupport.Driver
		if err := json.Unmarshal(b, &drivers); err != nil {
			t.Fatalf("data is not a JSON array: %v", err)
		}
		if len(drivers) != 1 || drivers[0].Version != "02.61" || drivers[0].Date != "2022-11-08T00:00:00.000Z" {
			t.Errorf("unexpected drivers: %+v", drivers)
		}
		if !strings.Contains(string(b), "\n    {") {
			t.Error("data should be indented with four spaces")
		}

		shot, err := os.ReadFile(res.ScreenshotPath)
		if err != nil {
			t.Fatalf("read screenshot: %v", err)
		}
		if string(shot) != string(pngMagic) {
			t.Errorf("unexpected screenshot content %q", shot)
		}
	}

	if page.shots != 2 {
		t.Errorf("expected 2 screenshots, got %d", page.shots)
	}
}

func TestRun_FailureStopsButStillCapturesPage(t *testing.T) {
	page := &fakePage{failURLs: map[string]bool{products[0].URL: true}}
	opts := testOptions(t)

	results, err := Run(context.Background(), page, products, opts)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "first-product") {
		t.Errorf("error should name the product, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if len(page.navigated) != 1 {
		t.Errorf("second product should not be attempted, navigated %v", page.navigated)
	}

	if _, err := os.Stat(filepath.Join(opts.ScreenshotDir, "first-product.png")); err != nil {
		t.Errorf("failed product should still be captured: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.DataDir, "first-product.json")); !os.IsNotExist(err) {
		t.Errorf("failed product should not write data, stat err = %v", err)
	}
}

func TestRun_ScreenshotErrorDoesNotMaskScrapeError(t *testing.T) {
	page := &fakePage{
		failURLs: map[string]bool{products[0].URL: true},
		shotErr:  errors.New("target closed"),
	}

	_, err := Run(context.Background(), page, products, testOptions(t))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "ERR_NAME_NOT_RESOLVED") {
		t.Errorf("scrape error should win, got %v", err)
	}
}

func TestRun_ScreenshotErrorFailsSuccessfulScrape(t *testing.T) {
	page := &fakePage{shotErr: errors.New("target closed")}

	_, err := Run(context.Background(), page, products[:1], testOptions(t))
	if err == nil || !strings.Contains(err.Error(), "capture screenshot") {
		t.Fatalf("error = %v, want screenshot failure", err)
	}
}

func TestRun_YAMLFormat(t *testing.T) {
	opts := testOptions(t)
	opts.Format = output.FormatYAML

	results, err := Run(context.Background(), &fakePage{}, products[:1], opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ext := filepath.Ext(results[0].DataPath); ext != ".yaml" {
		t.Errorf("data extension = %q, want .yaml", ext)
	}
	b, _ := os.ReadFile(results[0].DataPath)
	if !strings.Contains(string(b), "02.61") || !strings.Contains(string(b), "name: HP EliteDesk") {
		t.Errorf("unexpected YAML:\n%s", b)
	}
}

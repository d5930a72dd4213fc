// Package hpsupport drives the HP support driver-download pages and extracts
// the driver records listed in their downloads table.
package hpsupport

import (
	"context"
	"errors"
	"time"
)

// Driver is one downloadable item of a product page.
type Driver struct {
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	Version string `json:"version" yaml:"version"`
	Date    string `json:"date" yaml:"date"` // release day, see DateLayout
}

// DateLayout is the serialized form of Driver.Date, e.g. 2022-11-08T00:00:00.000Z.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Page is the subset of browser operations the download flow needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitReady waits until an element matching sel exists in the DOM.
	WaitReady(ctx context.Context, sel string) error
	// WaitVisible waits until an element matching sel is visible.
	WaitVisible(ctx context.Context, sel string) error
	Click(ctx context.Context, sel string) error
	OuterHTML(ctx context.Context, sel string) (string, error)
	Sleep(ctx context.Context, d time.Duration) error
}

var (
	// ErrInvalidDate indicates a release date cell that could not be parsed.
	ErrInvalidDate = errors.New("invalid release date")
	// ErrMissingDateCell indicates a download row without a date column.
	ErrMissingDateCell = errors.New("download row has no date cell")
)

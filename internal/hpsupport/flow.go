package hpsupport

import (
	"context"
	"fmt"
	"time"

	"github.com/rgl/hp-drivers-scraper/internal/logger"
)

// Page selectors of the HP support driver pages.
const (
	cookiesMoreOptionsSelector = "#onetrust-pc-btn-handler"
	cookiesRejectAllSelector   = "button.ot-pc-refuse-all-handler"

	osNameHeaderSelector      = ".chooseOSContainer .commonOSBox:nth-child(1) .optOSdropdownHeader"
	osNameLastItemSelector    = ".chooseOSContainer .commonOSBox:nth-child(1) .optOSdropdownList li:nth-last-child(1)"
	osVersionHeaderSelector   = ".chooseOSContainer .commonOSBox:nth-child(2) .optOSdropdownHeader"
	osVersionLastItemSelector = ".chooseOSContainer .commonOSBox:nth-child(2) .optOSdropdownList li:nth-last-child(1)"
	findMyDriverSelector      = "#FindMyDriver.OSdetailsSubmitBtn"

	showAllDriversSelector = "#Show-All-Drivers"
	downloadTableSelector  = "#download-table"
)

const (
	cookieDialogTimeout = 1500 * time.Millisecond
	cookieSettleDelay   = 500 * time.Millisecond
)

// Upper bounds for single UI steps. chromedp waits and clicks block until
// the element shows up.
var (
	cookieStepTimeout = 30 * time.Second
	clickTimeout      = 30 * time.Second
)

// GetDrivers loads a product page, walks it to the full downloads table, and
// returns the drivers listed there.
func GetDrivers(ctx context.Context, page Page, url string) ([]Driver, error) {
	log := logger.With("url", url)

	log.Info("loading page")
	if err := page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}

	log.Info("rejecting cookies")
	if err := rejectCookies(ctx, page); err != nil {
		// Expected in countries without a cookie consent dialog.
		log.Debug("cookie dialog not handled", "error", err)
	}

	log.Info("selecting the OS")
	if err := selectOS(ctx, page); err != nil {
		return nil, fmt.Errorf("select OS: %w", err)
	}

	log.Info("waiting for the downloads table")
	if err := page.WaitVisible(ctx, showAllDriversSelector); err != nil {
		return nil, fmt.Errorf("wait for downloads table: %w", err)
	}
	if err := click(ctx, page, showAllDriversSelector); err != nil {
		return nil, fmt.Errorf("show all drivers: %w", err)
	}

	log.Info("getting data from the downloads table")
	html, err := page.OuterHTML(ctx, downloadTableSelector)
	if err != nil {
		return nil, fmt.Errorf("read downloads table: %w", err)
	}
	drivers, err := ParseDownloadTable(html)
	if err != nil {
		return nil, fmt.Errorf("parse downloads table: %w", err)
	}
	log.Debug("downloads table parsed", "drivers", len(drivers))

	return drivers, nil
}

// rejectCookies opens the consent preferences and rejects every category.
// It returns an error when the dialog does not show up in time or the whole
// step takes longer than cookieStepTimeout.
func rejectCookies(ctx context.Context, page Page) error {
	ctx, cancelStep := context.WithTimeout(ctx, cookieStepTimeout)
	defer cancelStep()

	waitCtx, cancel := context.WithTimeout(ctx, cookieDialogTimeout)
	err := page.WaitReady(waitCtx, cookiesMoreOptionsSelector)
	cancel()
	if err != nil {
		return err
	}

	if err := page.Click(ctx, cookiesMoreOptionsSelector); err != nil {
		return err
	}
	if err := page.WaitReady(ctx, cookiesRejectAllSelector); err != nil {
		return err
	}
	if err := page.Click(ctx, cookiesRejectAllSelector); err != nil {
		return err
	}
	return page.Sleep(ctx, cookieSettleDelay)
}

// selectOS picks the last entry of both the OS name and OS version
// dropdowns and submits the selection.
func selectOS(ctx context.Context, page Page) error {
	if err := page.WaitVisible(ctx, osNameHeaderSelector); err != nil {
		return err
	}
	for _, sel := range []string{
		osNameHeaderSelector,
		osNameLastItemSelector,
		osVersionHeaderSelector,
		osVersionLastItemSelector,
		findMyDriverSelector,
	} {
		if err := click(ctx, page, sel); err != nil {
			return fmt.Errorf("click %s: %w", sel, err)
		}
	}
	return nil
}

func click(ctx context.Context, page Page, sel string) error {
	ctx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()
	return page.Click(ctx, sel)
}

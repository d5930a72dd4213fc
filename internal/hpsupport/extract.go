package hpsupport

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	downloadLinkSelector = "a[title='Download']"
	versionCellSelector  = "td[data-sort='version']"
	dateCellSelector     = "td[data-sort='date']"
)

// ParseDownloadTable extracts the drivers listed in the HTML of the
// downloads table. Rows without a version cell are skipped.
func ParseDownloadTable(html string) ([]Driver, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := doc.Find(downloadTableSelector)
	if root.Length() == 0 {
		root = doc.Selection
	}

	drivers := []Driver{}
	var parseErr error
	root.Find(downloadLinkSelector).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		name, _ := link.Attr("utilitytitle")
		href, _ := link.Attr("href")
		row := link.Parent().Parent()

		versionCell := row.Find(versionCellSelector).First()
		if versionCell.Length() == 0 {
			return true
		}

		dateCell := row.Find(dateCellSelector).First()
		if dateCell.Length() == 0 {
			parseErr = fmt.Errorf("%w: %q", ErrMissingDateCell, name)
			return false
		}
		date, err := ParseReleaseDate(strings.TrimSpace(dateCell.Text()))
		if err != nil {
			parseErr = fmt.Errorf("driver %q: %w", name, err)
			return false
		}

		version := strings.Join(strings.Fields(versionCell.Text()), " ")
		drivers = append(drivers, Driver{
			Name:    name,
			URL:     href,
			Version: NormalizeVersion(name, version),
			Date:    FormatReleaseDate(date),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return drivers, nil
}

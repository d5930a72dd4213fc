package hpsupport

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// e.g. Nov 8, 2022
var releaseDateRe = regexp.MustCompile(`([A-Za-z]+) 0?([0-9]+), ([0-9]+)`)

var releaseMonths = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// ParseReleaseDate parses the downloads table date format (e.g. "Nov 8, 2022")
// into midnight UTC of that day.
func ParseReleaseDate(s string) (time.Time, error) {
	m := releaseDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	month, ok := releaseMonths[m[1]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month %q in %q", ErrInvalidDate, m[1], s)
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; the table never means that.
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("%w: day out of range in %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatReleaseDate renders t the way Driver.Date is stored.
func FormatReleaseDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// At some point HP started publishing these versions with a "00." prefix
// (e.g. "00.02.61" instead of "02.61").
var zeroPrefixedVersions = map[string]bool{
	"HP EliteDesk 800 G2 DM System BIOS (N21)": true,
}

var zeroPrefixRe = regexp.MustCompile(`^0+\.`)

// NormalizeVersion fixes the versions HP is known to publish broken. Any
// other version is returned unchanged.
func NormalizeVersion(name, version string) string {
	if zeroPrefixedVersions[name] {
		return zeroPrefixRe.ReplaceAllString(version, "")
	}
	return version
}

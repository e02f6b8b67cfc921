package domain

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// dateLayouts are tried in order by ParseAlertDate.
var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006",
	"Mon, 02 Jan 2006",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
}

// AlertDate is either a calendar date or the raw upstream string when no
// known layout matched.
type AlertDate struct {
	day time.Time
	raw string
	ok  bool
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) AlertDate {
	y, m, d := t.Date()
	return AlertDate{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), ok: true}
}

// RawDate keeps s as an opaque value.
func RawDate(s string) AlertDate {
	return AlertDate{raw: strings.TrimSpace(s)}
}

// ParseAlertDate returns a structured date for any layout in dateLayouts and
// an opaque one otherwise.
func ParseAlertDate(s string) AlertDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return AlertDate{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return RawDate(s)
}

// Time returns the structured date and whether there is one.
func (d AlertDate) Time() (time.Time, bool) {
	return d.day, d.ok
}

func (d AlertDate) IsZero() bool {
	return !d.ok && d.raw == ""
}

// String renders ISO-8601 for structured dates and the raw text otherwise.
func (d AlertDate) String() string {
	if d.ok {
		return d.day.Format(isoDate)
	}
	return d.raw
}

package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day with no time component. All comparisons and
// month/year bucketing use UTC.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// Accepted on read alongside the canonical layout. Sheets edited by hand
// sometimes carry slash dates.
var fallbackLayouts = []string{"1/2/2006", "01/02/2006", "2006/01/02"}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string (slash formats tolerated).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return Date{Time: t}, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.UTC().Format(dateLayout)
}

// Year returns the UTC year.
func (d Date) Year() int {
	return d.Time.UTC().Year()
}

// Month returns the UTC month (1-12).
func (d Date) Month() int {
	return int(d.Time.UTC().Month())
}

// Day returns the UTC day of the month.
func (d Date) Day() int {
	return d.Time.UTC().Day()
}

// InMonth reports whether the date falls in the given UTC month and year.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

// MarshalJSON encodes the date as its canonical YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any layout ParseDate accepts. An empty string
// decodes to the zero Date so validation can reject it with a clear error.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

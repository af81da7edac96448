package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day. The time portion is always midnight UTC.
type Date struct {
	time.Time
}

const isoDateLayout = "2006-01-02"

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(isoDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	// The remote store may return a full timestamp for date columns.
	if len(s) > len(isoDateLayout) {
		s = s[:len(isoDateLayout)]
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

var errBadDateFormat = errors.New("date must be in DD/MM/YYYY format")

// BrazilianToISO converts a DD/MM/YYYY string to YYYY-MM-DD. Day, month and
// year must be exactly two, two and four digits; ranges are checked but
// calendar validity is not (see IsValidBrazilianDate).
func BrazilianToISO(brazilian string) (string, error) {
	if brazilian == "" {
		return "", errBadDateFormat
	}
	parts := strings.Split(brazilian, "/")
	if len(parts) != 3 {
		return "", errBadDateFormat
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(day) != 2 || len(month) != 2 || len(year) != 4 {
		return "", errBadDateFormat
	}
	dayNum, err := strconv.Atoi(day)
	if err != nil {
		return "", errBadDateFormat
	}
	monthNum, err := strconv.Atoi(month)
	if err != nil {
		return "", errBadDateFormat
	}
	yearNum, err := strconv.Atoi(year)
	if err != nil {
		return "", errBadDateFormat
	}
	if dayNum < 1 || dayNum > 31 {
		return "", ErrInvalidDate
	}
	if monthNum < 1 || monthNum > 12 {
		return "", ErrInvalidDate
	}
	if yearNum < 1900 || yearNum > 2100 {
		return "", ErrInvalidDate
	}
	return year + "-" + month + "-" + day, nil
}

// ISOToBrazilian converts a YYYY-MM-DD string to DD/MM/YYYY. Only the shape
// is validated, mirroring the inverse conversion.
func ISOToBrazilian(iso string) (string, error) {
	if iso == "" {
		return "", errBadDateFormat
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return "", errBadDateFormat
	}
	year, month, day := parts[0], parts[1], parts[2]
	if len(year) != 4 || len(month) != 2 || len(day) != 2 {
		return "", errBadDateFormat
	}
	return day + "/" + month + "/" + year, nil
}

// IsValidBrazilianDate reports whether s is a calendar-valid DD/MM/YYYY date.
// Unlike BrazilianToISO it rejects combinations like 31/02/2024.
func IsValidBrazilianDate(s string) bool {
	iso, err := BrazilianToISO(s)
	if err != nil {
		return false
	}
	// time.Parse rejects out-of-range days such as 31/02/2024.
	_, err = time.Parse(isoDateLayout, iso)
	return err == nil
}

// ParseBrazilianDate parses a calendar-valid DD/MM/YYYY string.
func ParseBrazilianDate(s string) (Date, error) {
	if !IsValidBrazilianDate(s) {
		return Date{}, ErrInvalidDate
	}
	iso, _ := BrazilianToISO(s)
	return ParseISODate(iso)
}

// FormatToBrazilian renders t as DD/MM/YYYY.
func FormatToBrazilian(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

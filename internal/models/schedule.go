package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts "2006-01-02" and, for values that went through a
// timestamp-typed encoder, RFC3339 (only the date part is kept).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD", s)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// ClockTime is a wall-clock time of day at minute resolution, stored as
// minutes since midnight.
type ClockTime int

// ClockOf truncates t to the minute and returns its wall-clock time.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// ParseClockTime accepts "15:04" or "15:04:05" (seconds are dropped).
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", time.TimeOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q; use HH:MM", s)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for TIME columns.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return c.UnmarshalText(v)
	case string:
		return c.UnmarshalText([]byte(v))
	case time.Time:
		*c = ClockOf(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into ClockTime", src)
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Weekday wraps time.Weekday with lowercase English names on the wire.
type Weekday time.Weekday

var weekdayNames = map[string]Weekday{
	"sunday": Weekday(time.Sunday), "sun": Weekday(time.Sunday),
	"monday": Weekday(time.Monday), "mon": Weekday(time.Monday),
	"tuesday": Weekday(time.Tuesday), "tue": Weekday(time.Tuesday),
	"wednesday": Weekday(time.Wednesday), "wed": Weekday(time.Wednesday),
	"thursday": Weekday(time.Thursday), "thu": Weekday(time.Thursday),
	"friday": Weekday(time.Friday), "fri": Weekday(time.Friday),
	"saturday": Weekday(time.Saturday), "sat": Weekday(time.Saturday),
}

func ParseWeekday(s string) (Weekday, error) {
	w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return w, nil
}

func (w Weekday) String() string {
	return strings.ToLower(time.Weekday(w).String())
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

package domain

import "time"

// Period identifies a calendar month within a year.
type Period struct {
	Month int `json:"month"` // 1-12
	Year  int `json:"year"`
}

// PeriodOf returns the period a timestamp falls into, in UTC.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Month: int(u.Month()), Year: u.Year()}
}

// Bounds returns the half-open interval [start, end) covering the period.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether the timestamp falls within the period.
func (p Period) Contains(t time.Time) bool {
	start, end := p.Bounds()
	u := t.UTC()
	return !u.Before(start) && u.Before(end)
}

// Valid reports whether the month component is a real calendar month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12
}

package types

import (
	"sort"
	"time"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/samber/lo"
)

// MonthKey identifies one calendar month as "YYYY-MM" (e.g. "2024-03").
// It is the unit of the billing ledger: an asset's ledger records which
// month keys have already been invoiced.
type MonthKey string

const monthKeyLayout = "2006-01"

// MonthKeyFromTime returns the month key of the calendar month containing t.
func MonthKeyFromTime(t time.Time) MonthKey {
	return MonthKey(t.UTC().Format(monthKeyLayout))
}

// ParseMonthKey parses and validates a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	if _, err := time.Parse(monthKeyLayout, s); err != nil {
		return "", ierr.WithError(err).
			WithHintf("invalid month key %q, expected YYYY-MM", s).
			Mark(ierr.ErrValidation)
	}
	return MonthKey(s), nil
}

func (k MonthKey) String() string {
	return string(k)
}

func (k MonthKey) Validate() error {
	_, err := ParseMonthKey(string(k))
	return err
}

// Bounds returns the first and last day of the month at midnight UTC.
func (k MonthKey) Bounds() (start, end time.Time) {
	t, _ := time.Parse(monthKeyLayout, string(k))
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// DaysInMonth returns the actual day count of the calendar month.
func (k MonthKey) DaysInMonth() int {
	_, end := k.Bounds()
	return end.Day()
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	return string(k) < string(other)
}

// Next returns the month key of the following calendar month.
func (k MonthKey) Next() MonthKey {
	start, _ := k.Bounds()
	return MonthKeyFromTime(start.AddDate(0, 1, 0))
}

// MonthKeySet is a sorted, duplicate-free collection of month keys.
// It is stored on the campaign asset record as the invoiced-months ledger.
type MonthKeySet []MonthKey

// Contains reports whether the set includes the given month key.
func (s MonthKeySet) Contains(k MonthKey) bool {
	return lo.Contains(s, k)
}

// Add returns a new set including k. Adding an existing key is a no-op,
// which keeps ledger updates idempotent.
func (s MonthKeySet) Add(k MonthKey) MonthKeySet {
	if s.Contains(k) {
		return s
	}
	out := append(MonthKeySet{}, s...)
	out = append(out, k)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Remove returns a new set without k. Used only by the administrative
// ledger override path.
func (s MonthKeySet) Remove(k MonthKey) MonthKeySet {
	return lo.Filter(s, func(item MonthKey, _ int) bool {
		return item != k
	})
}

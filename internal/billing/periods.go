package billing

import (
	"time"

	ierr "github.com/adboardhq/adboard/internal/errors"
	"github.com/adboardhq/adboard/internal/types"
	"github.com/shopspring/decimal"
)

// BillingPeriod is one calendar-aligned slice of a campaign's duration,
// clipped to the campaign bounds. Periods are derived on every read and
// never persisted, so they can never drift from their inputs.
type BillingPeriod struct {
	Start          time.Time       `json:"start"`
	End            time.Time       `json:"end"`
	MonthKey       types.MonthKey  `json:"month_key"`
	Days           int             `json:"days"`
	ProRataFactor  decimal.Decimal `json:"pro_rata_factor"`
	IsFullMonth    bool            `json:"is_full_month"`
	IsCurrentMonth bool            `json:"is_current_month"`
}

// monthSpan is the intersection of a date range with one calendar month.
type monthSpan struct {
	monthKey  types.MonthKey
	start     time.Time
	end       time.Time
	days      int
	fullMonth bool
}

// truncateToDay normalizes a time to midnight UTC; billing works on whole
// days only.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInclusive counts whole days between two midnight-normalized dates,
// both bounds included.
func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// monthSpans splits [start, end] into per-calendar-month slices.
func monthSpans(start, end time.Time) []monthSpan {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil
	}

	var spans []monthSpan
	for key := types.MonthKeyFromTime(start); ; key = key.Next() {
		monthStart, monthEnd := key.Bounds()
		clipStart := monthStart
		if start.After(clipStart) {
			clipStart = start
		}
		clipEnd := monthEnd
		if end.Before(clipEnd) {
			clipEnd = end
		}

		spans = append(spans, monthSpan{
			monthKey:  key,
			start:     clipStart,
			end:       clipEnd,
			days:      daysInclusive(clipStart, clipEnd),
			fullMonth: clipStart.Equal(monthStart) && clipEnd.Equal(monthEnd),
		})

		if !monthEnd.Before(end) {
			break
		}
	}
	return spans
}

// proRataFactor applies the fixed 30-day reference month convention: a span
// covering its entire calendar month has factor exactly 1; a partial span
// has factor min(1, days/30).
func proRataFactor(span monthSpan) decimal.Decimal {
	if span.fullMonth {
		return decimal.NewFromInt(1)
	}
	factor := decimal.NewFromInt(int64(span.days)).
		Div(decimal.NewFromInt(types.ReferenceMonthDays))
	if factor.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return factor
}

// CalculateBillingPeriods splits a campaign's date range into ordered
// billing periods. MONTHLY yields one period per calendar month the
// campaign touches, each clipped to the campaign bounds; SINGLE yields
// exactly one period spanning the whole campaign with factor 1.
//
// The function is deterministic: identical inputs always yield an identical
// sequence, since both the UI preview and invoice persistence call it.
// now only affects the IsCurrentMonth flag.
func CalculateBillingPeriods(start, end time.Time, cycle types.BillingCycle, now time.Time) ([]BillingPeriod, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ierr.NewError("campaign dates are required").
			WithHint("Campaign start and end dates must be set").
			Mark(ierr.ErrValidation)
	}
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, ierr.NewError("invalid campaign dates").
			WithHint("Campaign end date must not be before start date").
			Mark(ierr.ErrValidation)
	}

	currentKey := types.MonthKeyFromTime(now)

	if cycle == types.BillingCycleSingle {
		key := types.MonthKeyFromTime(start)
		return []BillingPeriod{{
			Start:          start,
			End:            end,
			MonthKey:       key,
			Days:           daysInclusive(start, end),
			ProRataFactor:  decimal.NewFromInt(1),
			IsFullMonth:    true,
			IsCurrentMonth: key == currentKey,
		}}, nil
	}

	spans := monthSpans(start, end)
	periods := make([]BillingPeriod, 0, len(spans))
	for _, span := range spans {
		periods = append(periods, BillingPeriod{
			Start:          span.start,
			End:            span.end,
			MonthKey:       span.monthKey,
			Days:           span.days,
			ProRataFactor:  proRataFactor(span),
			IsFullMonth:    span.fullMonth,
			IsCurrentMonth: span.monthKey == currentKey,
		})
	}
	return periods, nil
}

// SumFactors returns the sum of all periods' pro-rata factors. It is the
// denominator used to apportion the campaign discount across periods.
func SumFactors(periods []BillingPeriod) decimal.Decimal {
	total := decimal.Zero
	for _, p := range periods {
		total = total.Add(p.ProRataFactor)
	}
	return total
}

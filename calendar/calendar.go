package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Calendar answers business-day questions over weekends plus a fixed holiday
// list.
type Calendar struct {
	holidays map[string]struct{}
}

// defaultHolidayList is the common FX market-closure core for 2024-2027:
// New Year's Day, Good Friday, Christmas Day, Boxing Day.
var defaultHolidayList = []string{
	"2024-01-01", "2024-03-29", "2024-12-25", "2024-12-26",
	"2025-01-01", "2025-04-18", "2025-12-25", "2025-12-26",
	"2026-01-01", "2026-04-03", "2026-12-25", "2026-12-26",
	"2027-01-01", "2027-03-26", "2027-12-25", "2027-12-26",
}

// New builds a calendar from explicit holiday dates.
func New(holidays []time.Time) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[h.Format("2006-01-02")] = struct{}{}
	}
	return c
}

// Default returns the calendar carrying the built-in holiday list.
func Default() *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(defaultHolidayList))}
	for _, key := range defaultHolidayList {
		c.holidays[key] = struct{}{}
	}
	return c
}

func (c *Calendar) isHoliday(t time.Time) bool {
	_, ok := c.holidays[t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and the holiday set.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !c.isHoliday(t)
}

// Adjust applies Modified Following: roll forward to a business day, falling
// back when the roll would cross a month end.
func (c *Calendar) Adjust(t time.Time) time.Time {
	origMonth := t.Month()
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !c.IsBusinessDay(t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// NextBusinessDay returns the first business day strictly after t.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	return c.AddBusinessDays(t, 1)
}

// AddBusinessDays advances n business days (n may be negative).
func (c *Calendar) AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if c.IsBusinessDay(t) {
			n -= step
		}
	}
	return t
}

// SpotDate returns the FX spot date, two business days after the trade date.
func (c *Calendar) SpotDate(trade time.Time) time.Time {
	return c.AddBusinessDays(trade, 2)
}

// ParseTenor splits a tenor label like "2W", "3M", "1Y" or "10D" into its
// count and unit.
func ParseTenor(tenor string) (int, byte, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return 0, 0, fmt.Errorf("invalid tenor %q", tenor)
	}
	unit := tenor[len(tenor)-1]
	switch unit {
	case 'D', 'W', 'M', 'Y':
	default:
		return 0, 0, fmt.Errorf("invalid tenor unit in %q", tenor)
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("invalid tenor count in %q", tenor)
	}
	return n, unit, nil
}

// ExpiryDate resolves a tenor label to a concrete expiry: the tenor period is
// applied to the spot date and the result adjusted by Modified Following.
func (c *Calendar) ExpiryDate(trade time.Time, tenor string) (time.Time, error) {
	n, unit, err := ParseTenor(tenor)
	if err != nil {
		return time.Time{}, err
	}
	spot := c.SpotDate(trade)
	var target time.Time
	switch unit {
	case 'D':
		target = spot.AddDate(0, 0, n)
	case 'W':
		target = spot.AddDate(0, 0, 7*n)
	case 'M':
		target = spot.AddDate(0, n, 0)
	case 'Y':
		target = spot.AddDate(n, 0, 0)
	}
	return c.Adjust(target), nil
}

// TenorDays returns the calendar-day distance from the trade date to the
// tenor's adjusted expiry. Rounding absorbs the odd-length days around DST
// transitions.
func (c *Calendar) TenorDays(trade time.Time, tenor string) (int, error) {
	expiry, err := c.ExpiryDate(trade, tenor)
	if err != nil {
		return 0, err
	}
	return int(math.Round(expiry.Sub(trade).Hours() / 24)), nil
}

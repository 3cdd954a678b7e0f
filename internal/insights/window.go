package insights

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in fact queries.
const DateLayout = "2006-01-02"

var allowedRanges = []int{7, 30, 90}

// AllowedRanges lists the window lengths callers may request.
func AllowedRanges() []int {
	out := make([]int, len(allowedRanges))
	copy(out, allowedRanges)
	return out
}

// ValidRange reports whether days is one of AllowedRanges.
func ValidRange(days int) bool {
	for _, r := range allowedRanges {
		if r == days {
			return true
		}
	}
	return false
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalises both bounds to calendar days.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

// Days is the number of calendar days covered, zero when To precedes From.
func (r DateRange) Days() int {
	if r.To.Before(r.From) {
		return 0
	}
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// Contains reports whether t's calendar day falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Previous is the equal-length range ending the day before From.
func (r DateRange) Previous() DateRange {
	days := r.Days()
	to := r.From.AddDate(0, 0, -1)
	return DateRange{From: to.AddDate(0, 0, -(days - 1)), To: to}
}

// Window pairs the trailing N days ending today with the N days before them.
type Window struct {
	Days     int
	Current  DateRange
	Previous DateRange
}

// NewWindow builds the comparison window for today and a range length.
func NewWindow(today time.Time, days int) Window {
	to := Day(today)
	current := DateRange{From: to.AddDate(0, 0, -(days - 1)), To: to}
	return Window{Days: days, Current: current, Previous: current.Previous()}
}

// round rounds the exact decimal value of x half-to-even at the given decimals.
func round(x float64, places int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	return v
}

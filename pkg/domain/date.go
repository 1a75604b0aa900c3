package domain

import "time"

// DateLayout is the wire format for schedule dates (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// FormatDate renders t as dd/mm/yyyy in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// QuickFilter is one of the date shortcuts offered above the schedule list.
type QuickFilter int

const (
	FilterAll QuickFilter = iota
	FilterToday
	FilterTomorrow
)

// QuickFilters is the display order of the shortcuts.
var QuickFilters = []QuickFilter{FilterToday, FilterTomorrow, FilterAll}

func (f QuickFilter) String() string {
	switch f {
	case FilterToday:
		return "Today"
	case FilterTomorrow:
		return "Tomorrow"
	default:
		return "All"
	}
}

// Date returns the date query for the filter relative to now.
// FilterAll returns "" which means no date parameter.
func (f QuickFilter) Date(now time.Time) string {
	switch f {
	case FilterToday:
		return FormatDate(now)
	case FilterTomorrow:
		return FormatDate(now.AddDate(0, 0, 1))
	default:
		return ""
	}
}

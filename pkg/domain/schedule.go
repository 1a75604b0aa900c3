package domain

import "strings"

// DoctorSchedule is a single doctor's duty slot as returned by the API.
type DoctorSchedule struct {
	ID       int     `json:"id"`
	Date     string  `json:"date"` // dd/mm/yyyy
	Name     string  `json:"name"`
	Timing   string  `json:"timing"`
	Category string  `json:"category"`
	Room     *string `json:"room,omitempty"`
}

// RoomName returns the room or "" when the schedule has none.
func (s DoctorSchedule) RoomName() string {
	if s.Room == nil {
		return ""
	}
	return *s.Room
}

// IsRegular reports whether the category belongs to the regular (non-specialist) roster.
func (s DoctorSchedule) IsRegular() bool {
	return strings.Contains(s.Category, "Regular") || strings.Contains(s.Category, "Dentist")
}

// ScheduleGroup is a date section of schedules, in server order.
type ScheduleGroup struct {
	Date      string
	Schedules []DoctorSchedule
}

// GroupByDate groups schedules by exact date-string equality.
// Groups appear in the order their date is first seen; items keep server order.
func GroupByDate(schedules []DoctorSchedule) []ScheduleGroup {
	var groups []ScheduleGroup
	index := make(map[string]int)
	for _, s := range schedules {
		i, ok := index[s.Date]
		if !ok {
			i = len(groups)
			index[s.Date] = i
			groups = append(groups, ScheduleGroup{Date: s.Date})
		}
		groups[i].Schedules = append(groups[i].Schedules, s)
	}
	return groups
}

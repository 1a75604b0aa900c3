package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/naveenspark/docduty/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// groupTitle is the section header text for a date group.
func groupTitle(date string) string {
	if strings.TrimSpace(date) == "" {
		return "Unknown Date"
	}
	return date
}

// doctorCount renders "N doctor(s)".
func doctorCount(n int) string {
	return fmt.Sprintf("%d doctor(s)", n)
}

// scheduleLine is the plain-text form of a schedule copied to the clipboard.
func scheduleLine(s domain.DoctorSchedule) string {
	parts := []string{s.Name, s.Category, s.Timing}
	if room := s.RoomName(); room != "" {
		parts = append(parts, room)
	}
	if s.Date != "" {
		parts = append(parts, s.Date)
	}
	return strings.Join(parts, " | ")
}

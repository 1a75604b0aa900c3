package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/docduty/pkg/client"
	"github.com/naveenspark/docduty/pkg/domain"
)

var (
	outTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#93c5fd")).Bold(true)
	outSection = lipgloss.NewStyle().Foreground(lipgloss.Color("#c8a84c")).Bold(true)
	outName    = lipgloss.NewStyle().Bold(true)
	outDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	outOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	outRegular = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	outVisitor = lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7"))
)

// printSchedules prints schedules in date sections, marking subscribed doctors.
func printSchedules(w io.Writer, list []domain.DoctorSchedule, subscribed domain.SubscriptionSet) {
	if len(list) == 0 {
		fmt.Fprintf(w, "\n  %s\n  %s\n\n", outTitle.Render("No schedules found"), outDim.Render("Try a different date or check back later"))
		return
	}
	for _, g := range domain.GroupByDate(list) {
		date := g.Date
		if date == "" {
			date = "Unknown Date"
		}
		noun := "doctors"
		if len(g.Schedules) == 1 {
			noun = "doctor"
		}
		fmt.Fprintf(w, "\n  %s  %s\n", outSection.Render(date), outDim.Render(fmt.Sprintf("%d %s", len(g.Schedules), noun)))
		for _, s := range g.Schedules {
			badge := outVisitor
			if s.IsRegular() {
				badge = outRegular
			}
			mark := ""
			if subscribed.Contains(s.Name) {
				mark = "  " + outOK.Render("✓ subscribed")
			}
			fmt.Fprintf(w, "    %s  %s%s\n", outName.Render(s.Name), badge.Render("["+s.Category+"]"), mark)
			detail := "🕒 " + s.Timing
			if room := s.RoomName(); room != "" {
				detail += "   📍 " + room
			}
			fmt.Fprintf(w, "      %s\n", outDim.Render(detail))
		}
	}
	fmt.Fprintln(w)
}

func printSubscriptions(w io.Writer, set domain.SubscriptionSet) {
	if set.Len() == 0 {
		fmt.Fprintf(w, "  %s\n", outDim.Render("Not subscribed to any doctor"))
		return
	}
	for _, name := range set.Names() {
		fmt.Fprintf(w, "  %s %s\n", outOK.Render("✓"), name)
	}
}

func printSubscriptionList(w io.Writer, list *client.SubscriptionList) {
	fmt.Fprintf(w, "  %s\n", outTitle.Render(fmt.Sprintf("%d active subscription(s)", list.Count)))
	for _, s := range list.Data {
		email := "-"
		if s.Email != nil {
			email = *s.Email
		}
		pushState := "no push"
		if s.HasPush {
			pushState = "push"
		}
		created := ""
		if s.CreatedAt != nil {
			created = *s.CreatedAt
		}
		fmt.Fprintf(w, "  %4d  %-32s %s  %s\n", s.ID, email, outDim.Render(pushState), outDim.Render(created))
	}
}

func printOK(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", outOK.Render("✅"), msg)
}

func printSubscriptionID(w io.Writer, id int) {
	if id == 0 {
		return
	}
	fmt.Fprintf(w, "   %s\n", outDim.Render(fmt.Sprintf("subscription id %d", id)))
}

// ANSI colors for plain version output.
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiNavy  = "\033[38;2;96;165;250m"  // #60a5fa
	ansiSky   = "\033[38;2;147;197;253m" // #93c5fd
	ansiSlate = "\033[38;2;136;144;160m" // #8890a0
)

// printVersion prints the spaced DOCDUTY wordmark and the version.
func printVersion(w io.Writer, v string) {
	letters := "DOCDUTY"
	colors := [2]string{ansiNavy, ansiSky}
	fmt.Fprint(w, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintf(w, "\n\n  %sdocduty %s%s\n\n", ansiSlate, v, ansiReset)
}

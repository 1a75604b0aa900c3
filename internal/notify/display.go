package notify

import (
	"github.com/naveenspark/docduty/pkg/domain"
)

// NotifyFunc shows a title and body with an optional icon.
type NotifyFunc func(title, body, icon string) error

// DesktopDisplayer adapts a NotifyFunc to Displayer. OnShow, if set, runs
// after each notification is shown.
type DesktopDisplayer struct {
	Notify NotifyFunc
	OnShow func(domain.PushNotification)
}

// Display shows n.
func (d DesktopDisplayer) Display(n domain.PushNotification) error {
	if err := d.Notify(n.Title, n.Body, n.Icon); err != nil {
		return err
	}
	if d.OnShow != nil {
		d.OnShow(n)
	}
	return nil
}

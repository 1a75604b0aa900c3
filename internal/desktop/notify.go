package desktop

import (
	"strings"

	"github.com/gen2brain/beeep"
)

// show posts a native notification. Tests replace it.
var show = beeep.Notify

// Notify shows a desktop notification. icon may be empty or a local file
// path; web-relative icons such as "/icon-192.png" are dropped.
func Notify(title, body, icon string) error {
	return show(title, body, localIcon(icon))
}

func localIcon(icon string) string {
	if strings.HasPrefix(icon, "/icon") || strings.HasPrefix(icon, "/badge") {
		return ""
	}
	return icon
}

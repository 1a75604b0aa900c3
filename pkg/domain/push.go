package domain

import (
	"encoding/json"
	"fmt"
)

// Defaults applied to push payloads that omit fields.
const (
	DefaultPushTitle = "🏥 IITJ Health Center"
	DefaultPushBody  = "New notification"
	DefaultPushIcon  = "/icon-192.png"
	DefaultPushBadge = "/badge-72.png"

	// PushTag groups duty notifications so a newer one replaces the older.
	PushTag = "doctor-notification"

	DefaultMessageTitle = "Doctor Duty"
	DefaultMessageBody  = "A doctor's duty is starting soon"
	DutyStartedTitle    = "🏥 Doctor Duty Started"
)

// PushPayload is the JSON body of a web push event. Unknown fields are ignored.
type PushPayload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
}

// PushNotification is what gets shown to the user.
type PushNotification struct {
	Title string
	Body  string
	Icon  string
	Badge string
	Tag   string
}

// ParsePushPayload decodes a push event body. An empty or malformed body is
// treated as an empty payload, so the defaults apply.
func ParsePushPayload(data []byte) PushPayload {
	var p PushPayload
	if len(data) == 0 {
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return PushPayload{}
	}
	return p
}

// Notification resolves the payload into a displayable notification.
func (p PushPayload) Notification() PushNotification {
	n := PushNotification{
		Title: p.Title,
		Body:  p.Body,
		Icon:  p.Icon,
		Badge: p.Badge,
		Tag:   PushTag,
	}
	if n.Title == "" {
		n.Title = DefaultPushTitle
	}
	if n.Body == "" {
		n.Body = DefaultPushBody
	}
	if n.Icon == "" {
		n.Icon = DefaultPushIcon
	}
	if n.Badge == "" {
		n.Badge = DefaultPushBadge
	}
	return n
}

// RemoteMessage is a native-push message with an optional notification part
// and a free-form data part.
type RemoteMessage struct {
	Notification *MessageNotification `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
}

// MessageNotification is the notification block of a RemoteMessage.
type MessageNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Notifications returns the notifications to show for the message: one for the
// notification part and one for a non-empty data part.
func (m RemoteMessage) Notifications() []PushNotification {
	var out []PushNotification
	if m.Notification != nil {
		n := PushNotification{Title: m.Notification.Title, Body: m.Notification.Body, Tag: PushTag}
		if n.Title == "" {
			n.Title = DefaultMessageTitle
		}
		if n.Body == "" {
			n.Body = DefaultMessageBody
		}
		out = append(out, n)
	}
	if len(m.Data) > 0 {
		out = append(out, PushNotification{
			Title: DutyStartedTitle,
			Body:  fmt.Sprintf("Dr. %s (%s) - %s", m.Data["doctor_name"], m.Data["category"], m.Data["time_range"]),
			Tag:   PushTag,
		})
	}
	return out
}

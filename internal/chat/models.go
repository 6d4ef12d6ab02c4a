package chat

import (
	"time"

	"github.com/suPer8Hu/mall-console/internal/api"
)

type DeliveryStatus string

const (
	StatusSending DeliveryStatus = "sending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

// Message is a cached chat message. LocalID and Status are only set on
// messages this console sent; the backend never stores them.
type Message struct {
	api.ChatMessage
	LocalID string         `json:"localId,omitempty"`
	Status  DeliveryStatus `json:"status,omitempty"`
}

// localLayout is the zone-less layout the backend stores message times in.
const localLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	time.RFC3339Nano,
	localLayout,
	"2006-01-02T15:04:05",
}

// parseTime reads zone-less times as local wall clock, matching how the
// backend writes them and how SendMessage stamps local copies.
func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

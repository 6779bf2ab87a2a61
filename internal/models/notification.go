package models

import "time"

// NotificationView is the rendering-facing state of a notification
type NotificationView struct {
	ID          string    `json:"id"`
	Dismissable bool      `json:"dismissable"`
	Elements    []string  `json:"elements"`
	LastUpdated time.Time `json:"last_updated"`
}

package entities

import "time"

type NotificationGroup struct {
	ID             uint64
	Name           string
	EmailAddresses string
	IsDefault      bool
}

// Notification is a pending outbox entry; at most one exists per load.
type Notification struct {
	ID          uint64
	LoadID      uint64
	Action      string
	CreatedWhen time.Time

	JobName  string
	PONumber string
}

package entities

import (
	"encoding/json"
	"time"
)

type DoInstall int

const (
	DoInstallUnknown DoInstall = 0
	DoInstallDeliver DoInstall = 1
	DoInstallInstall DoInstall = 2
)

func (d DoInstall) Label() string {
	switch d {
	case DoInstallDeliver:
		return "Deliver"
	case DoInstallInstall:
		return "Install"
	default:
		return "NA/Unknown"
	}
}

func (d DoInstall) Valid() bool {
	return d >= DoInstallUnknown && d <= DoInstallInstall
}

// Load is a tracked shipment/job. DeletedWhen marks a soft-deleted load.
type Load struct {
	ID                 uint64
	JobName            string
	PONumber           string
	SupplierID         *uint64
	SPONumber          string
	Description        string
	Notes              string
	LocationID         *uint64
	DeliveryStatusID   *uint64
	CompletionStatusID *uint64
	DoInstall          DoInstall
	Photo              *string
	CreatedWhen        time.Time
	UpdatedWhen        time.Time
	DeletedWhen        *time.Time

	// filled by joins on read
	SupplierName           *string
	LocationName           *string
	DeliveryStatusName     *string
	DeliveryStatusActive   *bool
	CompletionStatusName   *string
	CompletionStatusActive *bool

	NotificationGroupIDs []uint64
}

func (l *Load) IsDeleted() bool { return l.DeletedWhen != nil }

type LoadHistory struct {
	ID          uint64
	UserID      *uint64
	LoadID      uint64
	ChangedWhen time.Time
	Data        json.RawMessage
}

package dto

import (
	"encoding/json"

	"github.com/aarondl/null/v8"
)

// CreateLoadDTO: unset references and a nil group list are filled from the
// records flagged is_default.
type CreateLoadDTO struct {
	JobName              string      `json:"job_name" validate:"required,not_blank,max=255"`
	PONumber             string      `json:"po_number" validate:"required,not_blank,max=255"`
	SupplierID           null.Uint64 `json:"supplier_id"`
	SPONumber            string      `json:"spo_number" validate:"max=255"`
	Description          string      `json:"description"`
	Notes                string      `json:"notes"`
	LocationID           null.Uint64 `json:"location_id"`
	DeliveryStatusID     null.Uint64 `json:"delivery_status_id"`
	CompletionStatusID   null.Uint64 `json:"completion_status_id"`
	DoInstall            *int        `json:"do_install" validate:"omitempty,min=0,max=2"`
	NotificationGroupIDs []uint64    `json:"notification_group_ids"`
	SendNow              bool        `json:"send_now"`
}

// UpdateLoadDTO replaces the editable fields of a load.
type UpdateLoadDTO struct {
	JobName              string      `json:"job_name" validate:"required,not_blank,max=255"`
	PONumber             string      `json:"po_number" validate:"required,not_blank,max=255"`
	SupplierID           null.Uint64 `json:"supplier_id"`
	SPONumber            string      `json:"spo_number" validate:"max=255"`
	Description          string      `json:"description"`
	Notes                string      `json:"notes"`
	LocationID           null.Uint64 `json:"location_id"`
	DeliveryStatusID     null.Uint64 `json:"delivery_status_id"`
	CompletionStatusID   null.Uint64 `json:"completion_status_id"`
	DoInstall            int         `json:"do_install" validate:"min=0,max=2"`
	NotificationGroupIDs []uint64    `json:"notification_group_ids"`
	SendNow              bool        `json:"send_now"`
}

type LoadDTO struct {
	ID                   uint64      `json:"id"`
	JobName              string      `json:"job_name"`
	PONumber             string      `json:"po_number"`
	Supplier             *ShortDTO   `json:"supplier"`
	SPONumber            string      `json:"spo_number"`
	Description          string      `json:"description"`
	Notes                string      `json:"notes"`
	Location             *ShortDTO   `json:"location"`
	DeliveryStatus       *ShortDTO   `json:"delivery_status"`
	DeliveryIsPending    null.Bool   `json:"delivery_status__is_active"`
	CompletionStatus     *ShortDTO   `json:"completion_status"`
	CompletionIsPending  null.Bool   `json:"completion_status__is_active"`
	DoInstall            int         `json:"do_install"`
	DoInstallLabel       string      `json:"do_install_label"`
	Photo                null.String `json:"photo"`
	NotificationGroupIDs []uint64    `json:"notification_group_ids"`
	CreatedWhen          string      `json:"created_when"`
	UpdatedWhen          string      `json:"updated_when"`
	DeletedWhen          null.String `json:"deleted_when"`
}

type LoadHistoryDTO struct {
	ID          uint64          `json:"id"`
	UserID      null.Uint64     `json:"user_id"`
	ChangedWhen string          `json:"changed_when"`
	Data        json.RawMessage `json:"data"`
}

type LoadDetailDTO struct {
	LoadDTO
	Histories []LoadHistoryDTO `json:"histories"`
}

// LoadSavedDTO is returned by create and update.
type LoadSavedDTO struct {
	Load     LoadDTO  `json:"load"`
	Warnings []string `json:"warnings,omitempty"`
}

package dto

const (
	QueueSendSelectedDeleteSelected = "ss"
	QueueSendSelectedDeleteAll      = "sa"
	QueueDeleteSelected             = "ns"
)

type NotificationDTO struct {
	ID          uint64 `json:"id"`
	LoadID      uint64 `json:"load_id"`
	Action      string `json:"action"`
	JobName     string `json:"job_name"`
	PONumber    string `json:"po_number"`
	CreatedWhen string `json:"created_when"`
}

type ProcessQueueDTO struct {
	NotificationIDs []uint64 `json:"notifications"`
	Operation       string   `json:"operation" validate:"required,oneof=ss sa ns"`
}

type QueueResultDTO struct {
	Sent       int      `json:"sent"`
	Deleted    int      `json:"deleted"`
	Recipients []string `json:"recipients"`
	Warnings   []string `json:"warnings,omitempty"`
}

type NotificationCountDTO struct {
	Count uint64 `json:"count"`
}

package dto

type StatusDTO struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	Rank         int      `json:"rank"`
	IsActive     bool     `json:"is_active"`
	IsDefault    bool     `json:"is_default"`
	RecipientIDs []uint64 `json:"recipient_ids"`
}

type NotificationGroupDTO struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	EmailAddresses string   `json:"email_addresses"`
	Recipients     []string `json:"recipients"`
	IsDefault      bool     `json:"is_default"`
}

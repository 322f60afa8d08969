package dto

type CreateLocationDTO struct {
	Name      string `json:"name" validate:"required,not_blank,max=255"`
	IsDefault bool   `json:"is_default"`
}

type UpdateLocationDTO struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,not_blank,max=255"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

type LocationDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type MergeLocationDTO struct {
	TargetID uint64 `json:"merge_to" validate:"required"`
}

type MergeResultDTO struct {
	SourceID      uint64 `json:"merge_from"`
	TargetID      uint64 `json:"merge_to"`
	ReassignedIDs int64  `json:"reassigned"`
}

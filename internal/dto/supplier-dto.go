package dto

type CreateSupplierDTO struct {
	Name    string `json:"name" validate:"required,not_blank,max=255"`
	Details string `json:"details"`
}

type UpdateSupplierDTO struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,not_blank,max=255"`
	Details *string `json:"details,omitempty"`
}

type SupplierDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

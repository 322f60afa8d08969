package entities

import "time"

type Supplier struct {
	ID        uint64
	Name      string
	Details   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

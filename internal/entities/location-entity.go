package entities

import "time"

type Location struct {
	ID        uint64
	Name      string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

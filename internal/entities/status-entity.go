package entities

// Status is a delivery or completion status. IsActive marks a non-final state.
type Status struct {
	ID           uint64
	Name         string
	Rank         int
	IsActive     bool
	IsDefault    bool
	RecipientIDs []uint64
}

package notification

import "context"

// Repository is the persisted notification list. The list is stored whole:
// reads return the full ordered list and writes replace it entirely.
type Repository interface {
	// List returns the full stored list, newest first. A missing or
	// undecodable stored value yields an empty list.
	List(ctx context.Context) ([]Record, error)

	// SaveAll replaces the stored list.
	SaveAll(ctx context.Context, records []Record) error

	// Update applies transform to the stored list and writes the result
	// back. The whole read-transform-write cycle is atomic with respect
	// to other Update and SaveAll calls.
	Update(ctx context.Context, transform func([]Record) []Record) error
}

package domain

import "context"

// PaperStore is the persistence port for papers. Every call is a single
// all-or-nothing record operation; Save upserts by id. Implementations talk
// to a network-backed store and each call is independently latent.
type PaperStore interface {
	// List returns all papers, newest-first by creation time.
	List(ctx context.Context) ([]Paper, error)

	// GetByID returns the paper or nil when no record exists.
	GetByID(ctx context.Context, id string) (*Paper, error)

	// Save writes the full paper record, inserting or replacing by id.
	Save(ctx context.Context, paper *Paper) error

	// Delete removes the record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

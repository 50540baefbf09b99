package ports

import (
	"context"

	"github.com/aretw0/powerset/pkg/codec"
)

// MachineStore defines how named automata are persisted.
type MachineStore interface {
	// Save stores doc under name, replacing any previous definition.
	Save(ctx context.Context, name string, doc *codec.Document) error

	// Load retrieves the document stored under name.
	// Returns domain.ErrMachineNotFound if the name does not exist.
	Load(ctx context.Context, name string) (*codec.Document, error)

	// Delete removes the machine. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
}

package estate

import (
	"io"

	"bds-go/internal/model"
)

// TableStore owns the in-memory table of listings and its persistence.
// Implementations keep rows in insertion order; row position is only ever
// used to compute the folder-naming ordinal at creation time, never as
// record identity.
type TableStore interface {
	// Load reads the persisted table. A missing or unreadable file yields an
	// empty table rather than an error, so startup never blocks on bad data.
	Load() error

	// Save persists the full table, overwriting the previous file.
	Save() error

	// Len returns the current row count. The folder-naming ordinal for a new
	// record is Len() before the Append.
	Len() int

	// Rows returns a copy of the table in original row order. Mutating the
	// returned listings does not affect the store.
	Rows() []*model.Listing

	// FindByID returns a copy of the listing with the given ID, or nil.
	FindByID(id string) *model.Listing

	// Append adds a listing to the end of the in-memory table.
	Append(l *model.Listing)

	// UpdateByID replaces the stored listing with the same ID.
	UpdateByID(id string, l *model.Listing) error

	// RemoveByID deletes the listing with the given ID.
	RemoveByID(id string) error

	// Replace swaps the entire in-memory table. Used by restore.
	Replace(rows []*model.Listing)

	// ExportTo writes the current table to w in the persisted file format.
	ExportTo(w io.Writer) error
}

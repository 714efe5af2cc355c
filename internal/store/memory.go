package store

import (
	"io"

	"bds-go/internal/estate"
	"bds-go/internal/model"
)

// MemoryStore is an in-memory implementation of the TableStore interface.
// Load and Save are no-ops; everything else behaves like CSVStore. Useful
// for testing the service layer without touching the filesystem.
type MemoryStore struct {
	rows []*model.Listing
}

var _ estate.TableStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() error { return nil }
func (s *MemoryStore) Save() error { return nil }

func (s *MemoryStore) Len() int { return len(s.rows) }

func (s *MemoryStore) Rows() []*model.Listing {
	out := make([]*model.Listing, len(s.rows))
	for i, l := range s.rows {
		out[i] = l.Clone()
	}
	return out
}

func (s *MemoryStore) FindByID(id string) *model.Listing {
	for _, l := range s.rows {
		if l.ID == id {
			return l.Clone()
		}
	}
	return nil
}

func (s *MemoryStore) Append(l *model.Listing) {
	s.rows = append(s.rows, l.Clone())
}

func (s *MemoryStore) UpdateByID(id string, l *model.Listing) error {
	for i, row := range s.rows {
		if row.ID == id {
			s.rows[i] = l.Clone()
			s.rows[i].ID = id
			return nil
		}
	}
	return &estate.NotFoundError{ID: id}
}

func (s *MemoryStore) RemoveByID(id string) error {
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return &estate.NotFoundError{ID: id}
}

func (s *MemoryStore) Replace(rows []*model.Listing) {
	out := make([]*model.Listing, len(rows))
	for i, l := range rows {
		out[i] = l.Clone()
	}
	s.rows = out
}

func (s *MemoryStore) ExportTo(w io.Writer) error {
	return WriteTable(w, s.rows)
}

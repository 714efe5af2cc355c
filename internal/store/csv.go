package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"bds-go/internal/estate"
	"bds-go/internal/model"
)

// header is the canonical column set of the persisted table file.
var header = []string{"id", "category", "project", "price", "area", "phone", "profit", "notice", "status", "folder"}

// CSVStore persists the listing table to a single UTF-8 CSV file and owns the
// in-memory copy. There is exactly one reader and one writer (the same
// process), so no locking is needed.
type CSVStore struct {
	path string
	rows []*model.Listing
}

var _ estate.TableStore = (*CSVStore)(nil)

// NewCSVStore creates a store backed by the given file path. Call Load before
// first use.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Load reads the persisted table. Fails open: a missing or unparsable file
// yields an empty table so startup never blocks on bad data.
func (s *CSVStore) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		s.rows = nil
		return nil
	}
	defer f.Close()

	rows, err := ReadTable(f)
	if err != nil {
		s.rows = nil
		return nil
	}
	s.rows = rows
	return nil
}

// Save serializes the full table back to the persisted file. The write goes
// to a temp file first and is renamed into place on success, so a failure
// mid-write never corrupts the previous table.
func (s *CSVStore) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := WriteTable(tmpFile, s.rows); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

func (s *CSVStore) Len() int { return len(s.rows) }

func (s *CSVStore) Rows() []*model.Listing {
	out := make([]*model.Listing, len(s.rows))
	for i, l := range s.rows {
		out[i] = l.Clone()
	}
	return out
}

func (s *CSVStore) FindByID(id string) *model.Listing {
	for _, l := range s.rows {
		if l.ID == id {
			return l.Clone()
		}
	}
	return nil
}

func (s *CSVStore) Append(l *model.Listing) {
	s.rows = append(s.rows, l.Clone())
}

func (s *CSVStore) UpdateByID(id string, l *model.Listing) error {
	for i, row := range s.rows {
		if row.ID == id {
			s.rows[i] = l.Clone()
			s.rows[i].ID = id
			return nil
		}
	}
	return &estate.NotFoundError{ID: id}
}

func (s *CSVStore) RemoveByID(id string) error {
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return &estate.NotFoundError{ID: id}
}

func (s *CSVStore) Replace(rows []*model.Listing) {
	out := make([]*model.Listing, len(rows))
	for i, l := range rows {
		out[i] = l.Clone()
	}
	s.rows = out
}

func (s *CSVStore) ExportTo(w io.Writer) error {
	return WriteTable(w, s.rows)
}

// WriteTable writes listings to w as CSV with the canonical header row.
// Numbers are formatted as plain decimal text.
func WriteTable(w io.Writer, rows []*model.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range rows {
		area := ""
		if l.HasArea() {
			area = strconv.FormatFloat(*l.Area, 'f', -1, 64)
		}
		rec := []string{
			l.ID,
			l.Category,
			l.Project,
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			area,
			l.Phone,
			l.Profit,
			l.Notice,
			l.Status,
			l.FolderPath,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable parses a CSV table from r. The header row must carry the
// canonical column set and every row's price must parse; otherwise an error
// is returned and no rows are produced.
func ReadTable(r io.Reader) ([]*model.Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, name := range header {
		if head[i] != name {
			return nil, fmt.Errorf("unexpected column %q, want %q", head[i], name)
		}
	}

	var rows []*model.Listing
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		price, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing price %q: %w", line, rec[3], err)
		}

		var area *float64
		if rec[4] != "" {
			a, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing area %q: %w", line, rec[4], err)
			}
			area = &a
		}

		rows = append(rows, &model.Listing{
			ID:         rec[0],
			Category:   rec[1],
			Project:    rec[2],
			Price:      price,
			Area:       area,
			Phone:      rec[5],
			Profit:     rec[6],
			Notice:     rec[7],
			Status:     rec[8],
			FolderPath: rec[9],
		})
	}
	return rows, nil
}

package estate

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bds-go/internal/model"
)

// Service is the orchestration layer that coordinates the table store, the
// asset folders and the backup manager to perform the operations exposed to
// the CLI. All operations are synchronous and run to completion.
type Service struct {
	store    TableStore
	assets   AssetManager
	backups  Backups
	shareDir string
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(store TableStore, assets AssetManager, backups Backups, shareDir string, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:    store,
		assets:   assets,
		backups:  backups,
		shareDir: shareDir,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// ListingInput holds raw field values as entered by the user. Numeric fields
// stay strings until validation so parse failures can be reported per field.
type ListingInput struct {
	Category string
	Project  string
	Price    string
	Area     string
	Phone    string
	Profit   string
	Notice   string
	Status   string
}

// parse validates the input and returns the typed field values.
func (in ListingInput) parse() (price float64, area *float64, err error) {
	raw := strings.TrimSpace(in.Price)
	if raw == "" {
		return 0, nil, &ValidationError{Field: "price", Value: in.Price, Msg: "price is required"}
	}
	price, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, nil, &ValidationError{Field: "price", Value: in.Price, Msg: "not a number"}
	}
	if price < 0 {
		return 0, nil, &ValidationError{Field: "price", Value: in.Price, Msg: "must not be negative"}
	}

	if rawArea := strings.TrimSpace(in.Area); rawArea != "" {
		a, aerr := strconv.ParseFloat(rawArea, 64)
		if aerr != nil {
			return 0, nil, &ValidationError{Field: "area", Value: in.Area, Msg: "not a number"}
		}
		if a < 0 {
			return 0, nil, &ValidationError{Field: "area", Value: in.Area, Msg: "must not be negative"}
		}
		area = &a
	}

	switch in.Status {
	case "", model.StatusAvailable, model.StatusSoldOut:
	default:
		return 0, nil, &ValidationError{Field: "status", Value: in.Status, Msg: "must be available or sold-out"}
	}

	return price, area, nil
}

// AddRecord validates the input, creates the record's asset folder, writes
// the uploaded files into it, appends the record and persists the table.
// On validation failure nothing is mutated. The folder name embeds the
// category and the pre-insert row count; the record itself is identified by
// a fresh UUID from then on.
func (s *Service) AddRecord(in ListingInput, files []UploadFile) (*model.Listing, error) {
	price, area, err := in.parse()
	if err != nil {
		return nil, err
	}

	ordinal := s.store.Len()
	folder, err := s.assets.CreateFolder(in.Category, ordinal)
	if err != nil {
		return nil, fmt.Errorf("creating asset folder: %w", err)
	}

	if err := s.assets.WriteFiles(folder, files); err != nil {
		return nil, fmt.Errorf("writing asset files: %w", err)
	}

	l := &model.Listing{
		ID:         s.idgen.New(),
		Category:   in.Category,
		Project:    in.Project,
		Price:      price,
		Area:       area,
		Phone:      in.Phone,
		Profit:     in.Profit,
		Notice:     in.Notice,
		Status:     in.Status,
		FolderPath: folder,
	}

	s.store.Append(l)
	if err := s.store.Save(); err != nil {
		return nil, fmt.Errorf("saving table: %w", err)
	}

	s.logger.Info("record added", "id", l.ID, "folder", folder)
	return l, nil
}

// UpdateRecord replaces the fields of an existing record in place. The asset
// folder reference never changes, even when the category does. When files are
// supplied, the folder contents are fully replaced; otherwise existing assets
// are left untouched.
func (s *Service) UpdateRecord(id string, in ListingInput, files []UploadFile) (*model.Listing, error) {
	price, area, err := in.parse()
	if err != nil {
		return nil, err
	}

	l := s.store.FindByID(id)
	if l == nil {
		return nil, &NotFoundError{ID: id}
	}

	l.Category = in.Category
	l.Project = in.Project
	l.Price = price
	l.Area = area
	l.Phone = in.Phone
	l.Profit = in.Profit
	l.Notice = in.Notice
	l.Status = in.Status

	if len(files) > 0 {
		if err := s.assets.ReplaceFiles(l.FolderPath, files); err != nil {
			return nil, fmt.Errorf("replacing asset files: %w", err)
		}
	}

	if err := s.store.UpdateByID(id, l); err != nil {
		return nil, err
	}
	if err := s.store.Save(); err != nil {
		return nil, fmt.Errorf("saving table: %w", err)
	}

	s.logger.Info("record updated", "id", id)
	return l, nil
}

// DeleteRecord removes the record's row and its asset folder.
func (s *Service) DeleteRecord(id string) error {
	l := s.store.FindByID(id)
	if l == nil {
		return &NotFoundError{ID: id}
	}

	if err := s.assets.DeleteFolder(l.FolderPath); err != nil {
		return fmt.Errorf("deleting asset folder: %w", err)
	}

	if err := s.store.RemoveByID(id); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("saving table: %w", err)
	}

	s.logger.Info("record deleted", "id", id)
	return nil
}

// SearchRecords evaluates the criteria over the current table and returns a
// derived, non-owning view in original row order. The store is not mutated.
func (s *Service) SearchRecords(c Criteria) ([]*model.Listing, error) {
	return Filter(s.store.Rows(), c)
}

// GetRecord returns the record with the given ID.
func (s *Service) GetRecord(id string) (*model.Listing, error) {
	l := s.store.FindByID(id)
	if l == nil {
		return nil, &NotFoundError{ID: id}
	}
	return l, nil
}

// ListRecordImages returns the decodable images in the record's asset folder
// plus the number of files skipped as unreadable.
func (s *Service) ListRecordImages(id string) ([]ImageInfo, int, error) {
	l := s.store.FindByID(id)
	if l == nil {
		return nil, 0, &NotFoundError{ID: id}
	}
	return s.assets.ListImages(l.FolderPath)
}

// MaybeAutoBackup runs the opportunistic session-start backup check.
func (s *Service) MaybeAutoBackup() (*SnapshotPair, error) {
	return s.backups.MaybeAutoBackup(s.clock.Now())
}

// BackupNow unconditionally writes a snapshot pair stamped with today's date.
func (s *Service) BackupNow() (*SnapshotPair, error) {
	return s.backups.BackupNow(s.clock.Now())
}

// Restore replaces the entire table and asset tree from a snapshot pair.
// Destructive and irreversible without a prior backup.
func (s *Service) Restore(tablePath, archivePath string) error {
	return s.backups.Restore(tablePath, archivePath)
}

// ExportTable writes the current table to w in the persisted file format.
func (s *Service) ExportTable(w io.Writer) error {
	return s.store.ExportTo(w)
}

// ExportImagesArchive writes a compressed archive of the asset tree to w.
func (s *Service) ExportImagesArchive(w io.Writer) error {
	return s.backups.WriteImagesArchive(w)
}

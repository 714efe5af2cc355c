package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bds-go/internal/assets"
	"bds-go/internal/backup"
	"bds-go/internal/config"
	"bds-go/internal/encryption"
	"bds-go/internal/estate"
	"bds-go/internal/model"
	"bds-go/internal/store"
	"bds-go/internal/vault"
)

// App is the application layer between the CLI and the estate service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and performs the once-per-session
// auto-backup check on startup.
type App struct {
	cfg       *config.Config
	store     *store.CSVStore
	assets    estate.AssetManager
	backups   *backup.Manager
	vaults    []estate.Vault
	encryptor estate.Encryptor
	service   *estate.Service
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "AddRecord", "BackupNow").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}
	log.Debug("session start", "operation", operation)

	st := store.NewCSVStore(cfg.DataFile)
	if err := st.Load(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("loading table: %w", err)
	}

	am, err := assets.NewOSManager(cfg.AssetsDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating asset manager: %w", err)
	}

	var vaults []estate.Vault
	for _, vc := range cfg.Vaults {
		v, err := vault.NewVaultFromConfig(vc)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("creating vault %q: %w", vc.Name, err)
		}
		vaults = append(vaults, v)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	backups := backup.NewManager(st, cfg.AssetsDir, cfg.BackupDir, cfg.AutoBackupDays, vaults, enc, log)
	svc := estate.NewService(st, am, backups, cfg.ShareDir, log, estate.RealClock{}, estate.UUIDGenerator{})

	a := &App{
		cfg:       cfg,
		store:     st,
		assets:    am,
		backups:   backups,
		vaults:    vaults,
		encryptor: enc,
		service:   svc,
		logFile:   logFile,
	}

	// Opportunistic session-start check: back up when the most recent
	// snapshot is old enough.
	if pair, err := svc.MaybeAutoBackup(); err != nil {
		log.Warn("auto backup failed", "error", err)
	} else if pair != nil {
		log.Info("auto backup written", "stamp", pair.Stamp)
	}

	return a, nil
}

// AddRecord validates the input, reads the image files from disk and creates
// a new record.
func (a *App) AddRecord(in estate.ListingInput, imagePaths []string) (*model.Listing, error) {
	files, err := readUploads(imagePaths)
	if err != nil {
		return nil, err
	}
	return a.service.AddRecord(in, files)
}

// UpdateRecord replaces the fields of an existing record. When image paths
// are supplied, the record's asset folder contents are fully replaced.
func (a *App) UpdateRecord(id string, in estate.ListingInput, imagePaths []string) (*model.Listing, error) {
	files, err := readUploads(imagePaths)
	if err != nil {
		return nil, err
	}
	return a.service.UpdateRecord(id, in, files)
}

// DeleteRecord removes a record and its asset folder.
func (a *App) DeleteRecord(id string) error {
	return a.service.DeleteRecord(id)
}

// GetRecord returns a single record by ID.
func (a *App) GetRecord(id string) (*model.Listing, error) {
	return a.service.GetRecord(id)
}

// SearchRecords evaluates the criteria over the current table.
func (a *App) SearchRecords(c estate.Criteria) ([]*model.Listing, error) {
	return a.service.SearchRecords(c)
}

// ShareRecord exports one record's summary and images to the share directory.
func (a *App) ShareRecord(id string) (string, error) {
	return a.service.ShareRecord(id)
}

// ListRecordImages returns the decodable images in a record's asset folder
// plus the count of files skipped as unreadable.
func (a *App) ListRecordImages(id string) ([]estate.ImageInfo, int, error) {
	return a.service.ListRecordImages(id)
}

// BackupNow unconditionally writes a snapshot pair stamped with today's date.
func (a *App) BackupNow() (*estate.SnapshotPair, error) {
	return a.service.BackupNow()
}

// Restore replaces the entire table and asset tree from a snapshot pair.
func (a *App) Restore(tablePath, archivePath string) error {
	absTable, err := filepath.Abs(tablePath)
	if err != nil {
		return fmt.Errorf("resolving table path: %w", err)
	}
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("resolving archive path: %w", err)
	}
	return a.service.Restore(absTable, absArchive)
}

// ExportTable writes the current table to w in CSV form.
func (a *App) ExportTable(w io.Writer) error {
	return a.service.ExportTable(w)
}

// ExportImagesArchive writes a zip of the asset tree to w.
func (a *App) ExportImagesArchive(w io.Writer) error {
	return a.service.ExportImagesArchive(w)
}

// SetupKeys generates the age key pair used for offsite snapshot encryption.
func (a *App) SetupKeys(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// VaultPull downloads the snapshot pair for the given stamp from the first
// configured vault into the backup directory. The passphrase is only needed
// when the vault holds encrypted copies; pass "" otherwise.
func (a *App) VaultPull(stamp, passphrase string) ([]string, error) {
	if len(a.vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}

	var dctx estate.DecryptionContext
	if passphrase != "" {
		var err error
		dctx, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return nil, fmt.Errorf("unlocking private key: %w", err)
		}
	}

	return a.backups.PullFromVault(a.vaults[0], stamp, dctx)
}

// VaultVerify checks that every configured vault is accessible.
func (a *App) VaultVerify() error {
	if len(a.vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	for _, v := range a.vaults {
		if err := v.ValidateSetup(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// readUploads loads each path into an UploadFile, keeping the base name.
func readUploads(paths []string) ([]estate.UploadFile, error) {
	var files []estate.UploadFile
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading image %s: %w", p, err)
		}
		files = append(files, estate.UploadFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

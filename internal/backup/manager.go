package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bds-go/internal/estate"
	"bds-go/internal/store"
)

const (
	tableSuffix   = "_backup.csv"
	archiveSuffix = "_images.zip"
	stampLayout   = "20060102"
)

// Manager writes and restores date-stamped snapshot pairs: a full copy of
// the listing table and a zip of the entire asset tree. A backup runs
// synchronously from start to finish; the manager is idle between calls.
// When vaults are configured, each finished pair is mirrored offsite,
// encrypted first if an encryptor is set up.
type Manager struct {
	store      estate.TableStore
	assetsRoot string
	backupDir  string
	interval   time.Duration
	vaults     []estate.Vault
	encryptor  estate.Encryptor
	logger     estate.Logger
}

var _ estate.Backups = (*Manager)(nil)

// NewManager creates a backup manager. intervalDays is the auto-backup
// spacing; encryptor may be nil when no offsite encryption is wanted.
func NewManager(st estate.TableStore, assetsRoot, backupDir string, intervalDays int, vaults []estate.Vault, encryptor estate.Encryptor, logger estate.Logger) *Manager {
	return &Manager{
		store:      st,
		assetsRoot: assetsRoot,
		backupDir:  backupDir,
		interval:   time.Duration(intervalDays) * 24 * time.Hour,
		vaults:     vaults,
		encryptor:  encryptor,
		logger:     logger,
	}
}

// TableName returns the table file name for a stamp.
func TableName(stamp string) string { return stamp + tableSuffix }

// ArchiveName returns the archive file name for a stamp.
func ArchiveName(stamp string) string { return stamp + archiveSuffix }

// MaybeAutoBackup scans existing snapshot stamps and performs a full backup
// when none exists or the most recent is interval or more old. A gap of
// exactly the interval counts as due. Returns nil when not due.
func (m *Manager) MaybeAutoBackup(now time.Time) (*estate.SnapshotPair, error) {
	latest, err := m.latestStamp()
	if err != nil {
		return nil, fmt.Errorf("scanning backups: %w", err)
	}

	if latest != "" {
		last, err := time.Parse(stampLayout, latest)
		if err != nil {
			return nil, fmt.Errorf("parsing backup stamp %q: %w", latest, err)
		}
		if now.Sub(last) < m.interval {
			return nil, nil
		}
	}

	return m.BackupNow(now)
}

// BackupNow unconditionally writes the snapshot pair for now's date,
// overwriting any pair from the same day, then mirrors it to the configured
// vaults. Mirror failures are logged and do not fail the local backup.
func (m *Manager) BackupNow(now time.Time) (*estate.SnapshotPair, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	stamp := now.Format(stampLayout)
	pair := &estate.SnapshotPair{
		Stamp:       stamp,
		TablePath:   filepath.Join(m.backupDir, TableName(stamp)),
		ArchivePath: filepath.Join(m.backupDir, ArchiveName(stamp)),
	}

	if err := m.writeAtomic(pair.TablePath, m.store.ExportTo); err != nil {
		return nil, fmt.Errorf("writing table snapshot: %w", err)
	}

	if err := m.writeAtomic(pair.ArchivePath, m.WriteImagesArchive); err != nil {
		return nil, fmt.Errorf("writing images archive: %w", err)
	}

	m.logger.Info("backup written", "stamp", stamp)

	for _, v := range m.vaults {
		if err := m.mirror(v, pair); err != nil {
			m.logger.Error("vault mirror failed", "stamp", stamp, "error", err)
		}
	}

	return pair, nil
}

// Restore replaces the table and the asset tree from a snapshot pair. Both
// sources are fully validated before any current state is touched: the table
// must parse and the archive must open and contain only local entry names.
// The asset tree is then rebuilt in a staging directory and swapped in, and
// the table is persisted last. Rows referencing folders absent from the
// archive are kept; their folders simply come back empty.
func (m *Manager) Restore(tablePath, archivePath string) error {
	tf, err := os.Open(tablePath)
	if err != nil {
		return &estate.RestoreError{Stage: "table", Err: err}
	}
	rows, err := store.ReadTable(tf)
	tf.Close()
	if err != nil {
		return &estate.RestoreError{Stage: "table", Err: err}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return &estate.RestoreError{Stage: "archive", Err: err}
	}
	defer zr.Close()

	// Extract into a sibling staging directory so the swap is a rename.
	parent := filepath.Dir(m.assetsRoot)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return &estate.RestoreError{Stage: "archive", Err: err}
	}
	staging, err := os.MkdirTemp(parent, ".restore-*")
	if err != nil {
		return &estate.RestoreError{Stage: "archive", Err: err}
	}

	if err := ExtractArchive(&zr.Reader, staging); err != nil {
		os.RemoveAll(staging)
		return &estate.RestoreError{Stage: "archive", Err: err}
	}

	if err := os.RemoveAll(m.assetsRoot); err != nil {
		os.RemoveAll(staging)
		return &estate.RestoreError{Stage: "swap", Err: err}
	}
	if err := os.Rename(staging, m.assetsRoot); err != nil {
		return &estate.RestoreError{Stage: "swap", Err: err}
	}

	m.store.Replace(rows)
	if err := m.store.Save(); err != nil {
		return fmt.Errorf("persisting restored table: %w", err)
	}

	m.logger.Info("restore complete", "rows", len(rows))
	return nil
}

// WriteImagesArchive writes a zip of the current asset tree to w.
func (m *Manager) WriteImagesArchive(w io.Writer) error {
	return WriteArchive(w, m.assetsRoot)
}

// PullFromVault downloads the snapshot pair for the given stamp from the
// vault into the backup directory, decrypting when the vault holds encrypted
// copies. dctx may be nil when no encrypted copies exist. Returns the local
// paths written.
func (m *Manager) PullFromVault(v estate.Vault, stamp string, dctx estate.DecryptionContext) ([]string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	var paths []string
	for _, name := range []string{TableName(stamp), ArchiveName(stamp)} {
		dest := filepath.Join(m.backupDir, name)
		if err := m.pullOne(v, name, dest, dctx); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

// pullOne fetches one snapshot file, preferring the plaintext name and
// falling back to the ".age" encrypted copy.
func (m *Manager) pullOne(v estate.Vault, name, dest string, dctx estate.DecryptionContext) error {
	var plain bytes.Buffer
	if err := v.GetSnapshot(name, &plain); err == nil {
		return m.writeAtomic(dest, func(w io.Writer) error {
			_, werr := w.Write(plain.Bytes())
			return werr
		})
	}

	var cipher bytes.Buffer
	if err := v.GetSnapshot(name+encryptedSuffix, &cipher); err != nil {
		return fmt.Errorf("snapshot %s not found in vault: %w", name, err)
	}
	if dctx == nil {
		return fmt.Errorf("snapshot %s is encrypted; unlock the private key first", name)
	}

	return m.writeAtomic(dest, func(w io.Writer) error {
		return dctx.Decrypt(bytes.NewReader(cipher.Bytes()), w)
	})
}

// latestStamp returns the most recent snapshot date stamp in the backup
// directory, or "" when no snapshot exists.
func (m *Manager) latestStamp() (string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	latest := ""
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, tableSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(name, tableSuffix)
		if len(stamp) != len(stampLayout) {
			continue
		}
		if stamp > latest {
			latest = stamp
		}
	}
	return latest, nil
}

// writeAtomic writes via a temp file in the destination directory and
// renames into place on success.
func (m *Manager) writeAtomic(dest string, write func(io.Writer) error) error {
	dir := filepath.Dir(dest)
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

	if err := write(tmpFile); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

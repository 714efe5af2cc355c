package estate

import (
	"io"
	"time"
)

// SnapshotPair identifies one date-stamped backup: a full copy of the table
// and a compressed archive of the asset tree. Pairs are immutable once
// written; a second backup on the same day overwrites the same pair.
type SnapshotPair struct {
	Stamp       string // YYYYMMDD
	TablePath   string
	ArchivePath string
}

// Backups is the backup/restore manager. All operations are synchronous:
// a backup runs to completion before the call returns.
type Backups interface {
	// MaybeAutoBackup performs a full snapshot when the most recent snapshot
	// is 3 or more days old (or none exists). Returns nil when not due.
	MaybeAutoBackup(now time.Time) (*SnapshotPair, error)

	// BackupNow unconditionally writes a snapshot pair stamped with now's date.
	BackupNow(now time.Time) (*SnapshotPair, error)

	// Restore replaces the entire table and asset tree from the given pair.
	// Both sources are required and validated before anything is touched;
	// on failure the current state is left intact.
	Restore(tablePath, archivePath string) error

	// WriteImagesArchive writes a compressed archive of the current asset
	// tree to w, entry names relative to the asset root.
	WriteImagesArchive(w io.Writer) error
}

package estate_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bds-go/internal/assets"
	"bds-go/internal/estate"
	"bds-go/internal/store"
	"bds-go/internal/testutil"
)

// stubBackups records calls so service tests can assert delegation without
// real snapshot files.
type stubBackups struct {
	autoBackupAt time.Time
	backupNowAt  time.Time
	restored     [2]string
}

func (b *stubBackups) MaybeAutoBackup(now time.Time) (*estate.SnapshotPair, error) {
	b.autoBackupAt = now
	return nil, nil
}

func (b *stubBackups) BackupNow(now time.Time) (*estate.SnapshotPair, error) {
	b.backupNowAt = now
	return &estate.SnapshotPair{Stamp: now.Format("20060102")}, nil
}

func (b *stubBackups) Restore(tablePath, archivePath string) error {
	b.restored = [2]string{tablePath, archivePath}
	return nil
}

func (b *stubBackups) WriteImagesArchive(w io.Writer) error { return nil }

var _ estate.Backups = (*stubBackups)(nil)

func newTestService(t *testing.T) (*estate.Service, *store.MemoryStore, string) {
	t.Helper()
	assetsRoot := t.TempDir()
	am, err := assets.NewOSManager(assetsRoot)
	if err != nil {
		t.Fatalf("NewOSManager() error = %v", err)
	}
	st := store.NewMemoryStore()
	svc := estate.NewService(st, am, &stubBackups{}, t.TempDir(), estate.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return svc, st, assetsRoot
}

func validInput() estate.ListingInput {
	return estate.ListingInput{
		Category: "Apartment",
		Project:  "Sunrise Towers",
		Price:    "150",
		Area:     "50",
		Phone:    "0901234567",
		Status:   "available",
	}
}

func TestService_AddRecord(t *testing.T) {
	t.Run("appends a row and creates the asset folder", func(t *testing.T) {
		svc, st, assetsRoot := newTestService(t)

		l, err := svc.AddRecord(validInput(), []estate.UploadFile{
			{Name: "front.jpg", Data: []byte("jpegdata")},
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		if st.Len() != 1 {
			t.Errorf("store length = %d, want 1", st.Len())
		}
		if l.ID != "id-1" {
			t.Errorf("ID = %q, want id-1", l.ID)
		}
		if want := filepath.Join(assetsRoot, "Apartment_0"); l.FolderPath != want {
			t.Errorf("FolderPath = %q, want %q", l.FolderPath, want)
		}
		data, err := os.ReadFile(filepath.Join(l.FolderPath, "front.jpg"))
		if err != nil {
			t.Fatalf("reading uploaded file: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("uploaded file content = %q, want jpegdata", data)
		}
	})

	t.Run("folder ordinal follows the pre-insert row count", func(t *testing.T) {
		svc, _, assetsRoot := newTestService(t)

		first, err := svc.AddRecord(validInput(), nil)
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		in := validInput()
		in.Category = "Land"
		second, err := svc.AddRecord(in, nil)
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		if want := filepath.Join(assetsRoot, "Apartment_0"); first.FolderPath != want {
			t.Errorf("first FolderPath = %q, want %q", first.FolderPath, want)
		}
		if want := filepath.Join(assetsRoot, "Land_1"); second.FolderPath != want {
			t.Errorf("second FolderPath = %q, want %q", second.FolderPath, want)
		}
	})

	t.Run("invalid price mutates nothing", func(t *testing.T) {
		svc, st, assetsRoot := newTestService(t)

		in := validInput()
		in.Price = "abc"
		_, err := svc.AddRecord(in, nil)
		var verr *estate.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("AddRecord() error = %v, want ValidationError", err)
		}
		if verr.Field != "price" {
			t.Errorf("ValidationError field = %q, want price", verr.Field)
		}
		if st.Len() != 0 {
			t.Errorf("store length = %d, want 0", st.Len())
		}
		entries, err := os.ReadDir(assetsRoot)
		if err != nil {
			t.Fatalf("reading assets root: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("asset folders created = %d, want 0", len(entries))
		}
	})

	t.Run("rejects negative area and unknown status", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		in := validInput()
		in.Area = "-5"
		if _, err := svc.AddRecord(in, nil); err == nil {
			t.Error("AddRecord() with negative area succeeded, want error")
		}

		in = validInput()
		in.Status = "pending"
		if _, err := svc.AddRecord(in, nil); err == nil {
			t.Error("AddRecord() with unknown status succeeded, want error")
		}
	})

	t.Run("area is optional", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		in := validInput()
		in.Area = ""
		l, err := svc.AddRecord(in, nil)
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		if l.HasArea() {
			t.Errorf("Area = %v, want unset", *l.Area)
		}
	})

	t.Run("category with path separators is sanitized in folder name", func(t *testing.T) {
		svc, _, assetsRoot := newTestService(t)

		in := validInput()
		in.Category = "nha/dat"
		l, err := svc.AddRecord(in, nil)
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		if want := filepath.Join(assetsRoot, "nha-dat_0"); l.FolderPath != want {
			t.Errorf("FolderPath = %q, want %q", l.FolderPath, want)
		}
	})
}

func TestService_UpdateRecord(t *testing.T) {
	t.Run("replaces fields but keeps the folder path", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		l, err := svc.AddRecord(validInput(), nil)
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		originalFolder := l.FolderPath

		in := validInput()
		in.Category = "Land"
		in.Price = "200"
		in.Status = "sold-out"
		updated, err := svc.UpdateRecord(l.ID, in, nil)
		if err != nil {
			t.Fatalf("UpdateRecord() error = %v", err)
		}

		if updated.Category != "Land" {
			t.Errorf("Category = %q, want Land", updated.Category)
		}
		if updated.Price != 200 {
			t.Errorf("Price = %v, want 200", updated.Price)
		}
		if updated.Status != "sold-out" {
			t.Errorf("Status = %q, want sold-out", updated.Status)
		}
		if updated.FolderPath != originalFolder {
			t.Errorf("FolderPath = %q, want %q (unchanged)", updated.FolderPath, originalFolder)
		}
	})

	t.Run("supplied files fully replace the folder contents", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		l, err := svc.AddRecord(validInput(), []estate.UploadFile{
			{Name: "old.jpg", Data: []byte("old")},
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		_, err = svc.UpdateRecord(l.ID, validInput(), []estate.UploadFile{
			{Name: "new.jpg", Data: []byte("new")},
		})
		if err != nil {
			t.Fatalf("UpdateRecord() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(l.FolderPath, "old.jpg")); !os.IsNotExist(err) {
			t.Errorf("old.jpg still present after replacement")
		}
		if _, err := os.Stat(filepath.Join(l.FolderPath, "new.jpg")); err != nil {
			t.Errorf("new.jpg missing after replacement: %v", err)
		}
	})

	t.Run("no files leaves existing assets untouched", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		l, err := svc.AddRecord(validInput(), []estate.UploadFile{
			{Name: "keep.jpg", Data: []byte("keep")},
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		if _, err := svc.UpdateRecord(l.ID, validInput(), nil); err != nil {
			t.Fatalf("UpdateRecord() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(l.FolderPath, "keep.jpg")); err != nil {
			t.Errorf("keep.jpg missing after field-only update: %v", err)
		}
	})

	t.Run("unknown ID returns NotFoundError", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.UpdateRecord("missing", validInput(), nil)
		var nf *estate.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("UpdateRecord() error = %v, want NotFoundError", err)
		}
	})
}

func TestService_DeleteRecord(t *testing.T) {
	t.Run("removes the row and the asset folder", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		l, err := svc.AddRecord(validInput(), []estate.UploadFile{
			{Name: "a.jpg", Data: []byte("a")},
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		if err := svc.DeleteRecord(l.ID); err != nil {
			t.Fatalf("DeleteRecord() error = %v", err)
		}

		if st.Len() != 0 {
			t.Errorf("store length = %d, want 0", st.Len())
		}
		if _, err := os.Stat(l.FolderPath); !os.IsNotExist(err) {
			t.Errorf("asset folder still present after delete")
		}
	})

	t.Run("unknown ID returns NotFoundError", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		var nf *estate.NotFoundError
		if err := svc.DeleteRecord("missing"); !errors.As(err, &nf) {
			t.Errorf("DeleteRecord() error = %v, want NotFoundError", err)
		}
	})
}

func TestService_SearchRecords(t *testing.T) {
	t.Run("returns matches without mutating the store", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		if _, err := svc.AddRecord(validInput(), nil); err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		in := validInput()
		in.Category = "Land"
		in.Price = "300"
		if _, err := svc.AddRecord(in, nil); err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		got, err := svc.SearchRecords(estate.Criteria{Category: "land"})
		if err != nil {
			t.Fatalf("SearchRecords() error = %v", err)
		}
		if len(got) != 1 || got[0].Category != "Land" {
			t.Errorf("SearchRecords() = %v, want one Land row", got)
		}
		if st.Len() != 2 {
			t.Errorf("store length = %d, want 2", st.Len())
		}
	})
}

func TestService_ShareRecord(t *testing.T) {
	t.Run("writes summary and copies images", func(t *testing.T) {
		assetsRoot := t.TempDir()
		shareDir := t.TempDir()
		am, err := assets.NewOSManager(assetsRoot)
		if err != nil {
			t.Fatalf("NewOSManager() error = %v", err)
		}
		st := store.NewMemoryStore()
		svc := estate.NewService(st, am, &stubBackups{}, shareDir, estate.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())

		in := validInput()
		in.Notice = "corner unit"
		l, err := svc.AddRecord(in, []estate.UploadFile{
			{Name: "front.jpg", Data: []byte("img")},
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}

		dest, err := svc.ShareRecord(l.ID)
		if err != nil {
			t.Fatalf("ShareRecord() error = %v", err)
		}
		if want := filepath.Join(shareDir, filepath.Base(l.FolderPath)); dest != want {
			t.Errorf("dest = %q, want %q", dest, want)
		}

		summary, err := os.ReadFile(filepath.Join(dest, "info.txt"))
		if err != nil {
			t.Fatalf("reading summary: %v", err)
		}
		for _, want := range []string{"Apartment", "Sunrise Towers", "150", "corner unit"} {
			if !strings.Contains(string(summary), want) {
				t.Errorf("summary missing %q:\n%s", want, summary)
			}
		}

		if _, err := os.Stat(filepath.Join(dest, "front.jpg")); err != nil {
			t.Errorf("shared image missing: %v", err)
		}
	})

	t.Run("unknown ID returns NotFoundError", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		var nf *estate.NotFoundError
		if _, err := svc.ShareRecord("missing"); !errors.As(err, &nf) {
			t.Errorf("ShareRecord() error = %v, want NotFoundError", err)
		}
	})
}

func TestService_Backups(t *testing.T) {
	t.Run("backup operations use the service clock", func(t *testing.T) {
		backups := &stubBackups{}
		clock := testutil.FixedClock()
		am, err := assets.NewOSManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewOSManager() error = %v", err)
		}
		svc := estate.NewService(store.NewMemoryStore(), am, backups, t.TempDir(), estate.NewNopLogger(), clock, testutil.NewStubIDGenerator())

		if _, err := svc.MaybeAutoBackup(); err != nil {
			t.Fatalf("MaybeAutoBackup() error = %v", err)
		}
		if !backups.autoBackupAt.Equal(clock.Now()) {
			t.Errorf("MaybeAutoBackup time = %v, want %v", backups.autoBackupAt, clock.Now())
		}

		pair, err := svc.BackupNow()
		if err != nil {
			t.Fatalf("BackupNow() error = %v", err)
		}
		if pair.Stamp != "20240115" {
			t.Errorf("Stamp = %q, want 20240115", pair.Stamp)
		}

		if err := svc.Restore("/tmp/t.csv", "/tmp/i.zip"); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if backups.restored != [2]string{"/tmp/t.csv", "/tmp/i.zip"} {
			t.Errorf("Restore() forwarded %v", backups.restored)
		}
	})
}

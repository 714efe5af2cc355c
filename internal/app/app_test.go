package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bds-go/internal/config"
	"bds-go/internal/estate"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.NewConfig("test-host", t.TempDir())

	a, err := NewApp(cfg, "test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_RecordLifecycle(t *testing.T) {
	a := newTestApp(t)

	imgPath := filepath.Join(t.TempDir(), "front.jpg")
	if err := os.WriteFile(imgPath, []byte("jpegdata"), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := a.AddRecord(estate.ListingInput{
		Category: "Apartment",
		Project:  "Sunrise Towers",
		Price:    "150",
		Status:   "available",
	}, []string{imgPath})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(l.FolderPath, "front.jpg"))
	if err != nil || string(data) != "jpegdata" {
		t.Errorf("uploaded image = %q, %v", data, err)
	}

	got, err := a.GetRecord(l.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.Project != "Sunrise Towers" {
		t.Errorf("Project = %q, want Sunrise Towers", got.Project)
	}

	results, err := a.SearchRecords(estate.Criteria{Category: "apart"})
	if err != nil {
		t.Fatalf("SearchRecords() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("SearchRecords() = %d rows, want 1", len(results))
	}

	var table bytes.Buffer
	if err := a.ExportTable(&table); err != nil {
		t.Fatalf("ExportTable() error = %v", err)
	}
	if !strings.Contains(table.String(), l.ID) {
		t.Error("exported table does not contain the record")
	}

	if err := a.DeleteRecord(l.ID); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if _, err := a.GetRecord(l.ID); err == nil {
		t.Error("GetRecord() after delete succeeded, want error")
	}
}

func TestApp_BackupAndRestore(t *testing.T) {
	a := newTestApp(t)

	l, err := a.AddRecord(estate.ListingInput{Category: "Land", Price: "300"}, nil)
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	pair, err := a.BackupNow()
	if err != nil {
		t.Fatalf("BackupNow() error = %v", err)
	}

	if err := a.DeleteRecord(l.ID); err != nil {
		t.Fatal(err)
	}

	if err := a.Restore(pair.TablePath, pair.ArchivePath); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if _, err := a.GetRecord(l.ID); err != nil {
		t.Errorf("GetRecord() after restore error = %v", err)
	}
}

func TestApp_VaultVerify_NoVaults(t *testing.T) {
	a := newTestApp(t)

	if err := a.VaultVerify(); err == nil {
		t.Error("VaultVerify() with no vaults succeeded, want error")
	}
}

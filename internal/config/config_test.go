package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:         "test-host-abc",
		BaseDir:        "/home/user/.local/share/bds",
		LogDir:         "/home/user/.local/share/bds/log",
		DataFile:       "/home/user/.local/share/bds/listings.csv",
		AssetsDir:      "/home/user/.local/share/bds/images",
		ShareDir:       "/home/user/.local/share/bds/shared",
		BackupDir:      "/home/user/.local/share/bds/backups",
		AutoBackupDays: 7,
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: "/backup/vault"},
			{Type: "s3", Name: "offsite", S3Bucket: "bds-backups", S3Region: "ap-southeast-1"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/bds/keys/bds.pub",
			PrivateKeyPath: "/home/user/.local/share/bds/keys/bds.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.DataFile != original.DataFile {
		t.Errorf("DataFile = %q, want %q", got.DataFile, original.DataFile)
	}
	if got.AssetsDir != original.AssetsDir {
		t.Errorf("AssetsDir = %q, want %q", got.AssetsDir, original.AssetsDir)
	}
	if got.AutoBackupDays != 7 {
		t.Errorf("AutoBackupDays = %d, want 7", got.AutoBackupDays)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[0].Type != "filesystem" || got.Vaults[0].FSVaultRoot != "/backup/vault" {
		t.Errorf("Vaults[0] = %+v, want the filesystem vault", got.Vaults[0])
	}
	if got.Vaults[1].S3Bucket != "bds-backups" {
		t.Errorf("Vaults[1].S3Bucket = %q, want %q", got.Vaults[1].S3Bucket, "bds-backups")
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
}

func TestManager_Read_DefaultsAutoBackupDays(t *testing.T) {
	var buf bytes.Buffer
	m := &Manager{}
	if err := m.Write(&buf, &Config{HostID: "h1"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.AutoBackupDays != defaultAutoBackupDays {
		t.Errorf("AutoBackupDays = %d, want %d", got.AutoBackupDays, defaultAutoBackupDays)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/bds")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.DataFile != "/data/bds/listings.csv" {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, "/data/bds/listings.csv")
	}
	if cfg.AssetsDir != "/data/bds/images" {
		t.Errorf("AssetsDir = %q, want %q", cfg.AssetsDir, "/data/bds/images")
	}
	if cfg.ShareDir != "/data/bds/shared" {
		t.Errorf("ShareDir = %q, want %q", cfg.ShareDir, "/data/bds/shared")
	}
	if cfg.BackupDir != "/data/bds/backups" {
		t.Errorf("BackupDir = %q, want %q", cfg.BackupDir, "/data/bds/backups")
	}
	if cfg.AutoBackupDays != defaultAutoBackupDays {
		t.Errorf("AutoBackupDays = %d, want %d", cfg.AutoBackupDays, defaultAutoBackupDays)
	}
	if cfg.Encryption.PublicKeyPath != "/data/bds/keys/bds.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/bds/keys/bds.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/bds/keys/bds.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/bds/keys/bds.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bds.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bds.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bds.toml")
		cfg := NewConfig("read-test", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/bds.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

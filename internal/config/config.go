package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// defaultAutoBackupDays is the spacing of the opportunistic session-start
// backup check.
const defaultAutoBackupDays = 3

// Config represents the main configuration for bds.
type Config struct {
	HostID         string           `toml:"host_id"`
	BaseDir        string           `toml:"base_dir"`
	LogDir         string           `toml:"log_dir"`
	DataFile       string           `toml:"data_file"`   // persisted listing table (CSV)
	AssetsDir      string           `toml:"assets_dir"`  // image folder tree root
	ShareDir       string           `toml:"share_dir"`   // share snapshot output
	BackupDir      string           `toml:"backup_dir"`  // snapshot pairs
	AutoBackupDays int              `toml:"auto_backup_days"`
	Vaults         []VaultConfig    `toml:"vaults"`
	Encryption     EncryptionConfig `toml:"encryption"`
}

// EncryptionConfig holds paths to the age key pair used to encrypt snapshot
// pairs before offsite upload.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents configuration for an offsite vault backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:         hostID,
		BaseDir:        baseDir,
		LogDir:         filepath.Join(baseDir, "log"),
		DataFile:       filepath.Join(baseDir, "listings.csv"),
		AssetsDir:      filepath.Join(baseDir, "images"),
		ShareDir:       filepath.Join(baseDir, "shared"),
		BackupDir:      filepath.Join(baseDir, "backups"),
		AutoBackupDays: defaultAutoBackupDays,
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "bds.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "bds.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.AutoBackupDays <= 0 {
		cfg.AutoBackupDays = defaultAutoBackupDays
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

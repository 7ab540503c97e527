package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chemiclast/rasorite/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm = 0o755
	defaultDBName  = "benchmarks.db"
	defaultTTL     = 24 * time.Hour
)

type Config struct {
	DBPath string
	// BackupDir receives a copy of the database before an incompatible
	// schema is dropped. Empty means next to DBPath.
	BackupDir string
	// TTL is how long a stored benchmark is served. Zero never expires.
	TTL     time.Duration
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:  DefaultDBPath(),
		TTL:     defaultTTL,
		Enabled: false, // Disabled by default
	}
}

// DefaultDBPath places the cache in the user cache directory, falling back
// to the working directory.
func DefaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return defaultDBName
	}
	return filepath.Join(dir, "rasorite", defaultDBName)
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if the cache is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.TTL < 0 {
		return errFactory.WithData(ErrInvalidConfig, c.TTL.String())
	}
	return nil
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}

package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/cargo-check-i18n/internal"
)

// ArchiveDirName is created next to the cache file
const ArchiveDirName = "." + internal.ToolName + "-archive"

// Archive moves the cache file into the archive directory with a timestamp
// and returns the new location. The next run starts with an empty cache.
func Archive(cachePath string) (string, error) {
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		return "", fmt.Errorf("cache file does not exist: %s", cachePath)
	}

	archiveDir := filepath.Join(filepath.Dir(cachePath), ArchiveDirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("cache-%s.json", timestamp))

	// Two archives within the same second
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("cache-%s.json", timestamp))
	}

	if err := os.Rename(cachePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive cache file: %w", err)
	}

	return archivePath, nil
}

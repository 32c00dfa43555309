package internal

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
)

// Version is the released version of cargo-check-i18n
const Version = "0.2.0"

// ToolName is used for the config directory, the cache file and env prefixes
const ToolName = "cargo-check-i18n"

// CacheFileName is the per-project translation cache, relative to the project directory
const CacheFileName = "." + ToolName + "-cache.json"

// CacheFilePath returns the location of the translation cache for a project
func CacheFilePath(projectDir string) string {
	return filepath.Join(projectDir, CacheFileName)
}

// ShortHash returns the first 8 hex characters of the MD5 of s.
// Used to refer to cache keys in logs without dumping whole diagnostics.
func ShortHash(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])[:8]
}

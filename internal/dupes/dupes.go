// Package dupes finds queued files with identical content.
package dupes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"filesort/internal/logging"
)

const defaultCacheSize = 4096

// Duplicate is a file whose content matches an earlier queued file.
type Duplicate struct {
	Name     string
	Path     string
	Original string
	Digest   string
}

// Skipped is a file that could not be hashed.
type Skipped struct {
	Path   string
	Reason string
}

// Result lists duplicates in queue order.
type Result struct {
	Duplicates []Duplicate
	Skipped    []Skipped
	Scanned    int
}

// Names returns the basenames of the duplicates in queue order.
func (r Result) Names() []string {
	names := make([]string, len(r.Duplicates))
	for i, dup := range r.Duplicates {
		names[i] = dup.Name
	}
	return names
}

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Finder hashes files with SHA-256. Digests are cached by path, size and
// modification time so unchanged files are not re-read.
type Finder struct {
	cache  *lru.Cache[cacheKey, string]
	logger *slog.Logger
}

// NewFinder constructs a Finder holding up to cacheSize digests.
func NewFinder(cacheSize int, logger *slog.Logger) (*Finder, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create digest cache: %w", err)
	}
	return &Finder{cache: cache, logger: logging.NewComponentLogger(logger, "dupes")}, nil
}

// Find hashes every extant path in order. The first path seen for a digest is
// the original; later ones are duplicates. Missing paths are ignored and
// unreadable ones are reported as skipped.
func (f *Finder) Find(ctx context.Context, paths []string) (Result, error) {
	logger := logging.WithContext(ctx, f.logger)
	var result Result
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		digest, err := f.digest(path, info)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Path: path, Reason: err.Error()})
			logger.Info("file skipped during duplicate scan",
				logging.Path(path),
				logging.Error(err),
				logging.EventType("duplicate_scan_skipped"),
			)
			continue
		}
		result.Scanned++
		if original, ok := seen[digest]; ok {
			result.Duplicates = append(result.Duplicates, Duplicate{
				Name:     filepath.Base(path),
				Path:     path,
				Original: original,
				Digest:   digest,
			})
			logger.Debug("duplicate found",
				logging.Path(path),
				logging.String("original", original),
				logging.EventType("duplicate_found"),
			)
			continue
		}
		seen[digest] = path
	}
	logger.Debug("duplicate scan finished",
		logging.Int("scanned", result.Scanned),
		logging.Int("duplicates", len(result.Duplicates)),
		logging.Int("cached_digests", f.CacheLen()),
		logging.EventType("duplicate_scan_finished"),
	)
	return result, nil
}

// CacheLen reports how many digests are cached.
func (f *Finder) CacheLen() int {
	return f.cache.Len()
}

func (f *Finder) digest(path string, info os.FileInfo) (string, error) {
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if digest, ok := f.cache.Get(key); ok {
		return digest, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	f.cache.Add(key, digest)
	return digest, nil
}

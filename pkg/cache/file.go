package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	fileSuffix   = ".json"
	hashedSuffix = ".sha256"
	keySuffix    = ".key"

	// maxEncodedName keeps entry names, temp suffix included, under the
	// 255 byte limit of common filesystems.
	maxEncodedName = 200
)

// File stores one file per key under a directory. File names are the
// base64url encoding of the key so arbitrary keys map to safe names. Keys
// whose encoding is too long for a file name are stored under their sha256
// digest with the key itself in a ".key" file next to the entry. Writes go
// through a temp file and rename.
type File struct {
	dir  string
	mode os.FileMode
	mu   sync.RWMutex
}

// FileOption customises a File backend.
type FileOption func(*File)

// WithFileMode sets the permission bits for written entries (0o600 default).
func WithFileMode(mode os.FileMode) FileOption {
	return func(f *File) {
		f.mode = mode
	}
}

// NewFile returns a backend rooted at dir, creating it when missing.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache: file backend directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create %s: %w", dir, err)
	}
	f := &File{dir: dir, mode: 0o600}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Dir returns the backing directory.
func (f *File) Dir() string {
	return f.dir
}

// Has implements Backend.
func (f *File) Has(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, err := os.Stat(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get implements Backend.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// Set implements Backend.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stem, hashed := f.stem(key)
	if hashed {
		if err := writeFile(filepath.Join(f.dir, stem+keySuffix), []byte(key), f.mode); err != nil {
			return err
		}
	}
	return writeFile(filepath.Join(f.dir, stem+fileSuffix), []byte(value), f.mode)
}

// Delete implements Deleter.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stem, hashed := f.stem(key)
	err := os.Remove(filepath.Join(f.dir, stem+fileSuffix))
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	if hashed {
		if keyErr := os.Remove(filepath.Join(f.dir, stem+keySuffix)); keyErr != nil && !errors.Is(keyErr, os.ErrNotExist) {
			err = errors.Join(err, keyErr)
		}
	}
	return err
}

// Keys implements Lister. Files whose names do not decode are skipped.
func (f *File) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, fileSuffix)
		if strings.HasSuffix(stem, hashedSuffix) {
			key, err := os.ReadFile(filepath.Join(f.dir, stem+keySuffix))
			if err != nil {
				continue
			}
			keys = append(keys, string(key))
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(stem)
		if err != nil {
			continue
		}
		keys = append(keys, string(decoded))
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) path(key string) string {
	stem, _ := f.stem(key)
	return filepath.Join(f.dir, stem+fileSuffix)
}

// stem returns the entry name for key without its suffix. Hashed stems carry
// a '.', which base64url never produces, so the two forms cannot collide.
func (f *File) stem(key string) (string, bool) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(key))
	if len(encoded) <= maxEncodedName {
		return encoded, false
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + hashedSuffix, true
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmpFile, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := tmpFile.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := tmpFile.Write(b); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

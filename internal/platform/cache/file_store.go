package cache

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrMiss       = crerr.New("cache entry not found")
	ErrInvalidKey = crerr.New("invalid cache key")
)

// FileStore keeps one file per key inside a directory.
// Writes go through a temp file and rename, so concurrent writers race with last-writer-wins
// and readers never observe a partial file.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: strings.TrimSpace(dir)}
}

func (s *FileStore) Path(key Key) (string, error) {
	if s == nil || s.dir == "" {
		return "", crerr.New("cache directory is not configured")
	}
	if !key.Valid() {
		return "", crerr.Wrapf(ErrInvalidKey, "key=%s", key)
	}
	return filepath.Join(s.dir, key.FileName()), nil
}

func (s *FileStore) Read(ctx context.Context, key Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, crerr.Wrapf(ErrMiss, "read %s", path)
		}
		return nil, crerr.Wrapf(err, "read %s", path)
	}
	return raw, nil
}

func (s *FileStore) Write(ctx context.Context, key Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create cache dir %s", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key.Value+"-*.tmp")
	if err != nil {
		return crerr.Wrap(err, "create temp cache file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write temp cache file %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close temp cache file %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return crerr.Wrapf(err, "rename cache file into %s", path)
	}
	return nil
}

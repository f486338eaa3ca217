package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir implements Store on a local directory tree.
type Dir struct {
	base string
}

// NewDir creates the base directory if needed.
func NewDir(base string) (*Dir, error) {
	if base == "" {
		return nil, fmt.Errorf("archive: empty base directory")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Dir{base: base}, nil
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.base, filepath.FromSlash(key))
}

func (d *Dir) Put(ctx context.Context, key string, data []byte) error {
	p := d.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create archive subdirectory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

func (d *Dir) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(d.path(key))
}

func (d *Dir) Keys(ctx context.Context, prefix string) ([]string, error) {
	root := d.path(prefix)
	var keys []string
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.base, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return keys, err
}

func (d *Dir) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(d.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (d *Dir) Remove(ctx context.Context, key string) error {
	return os.Remove(d.path(key))
}

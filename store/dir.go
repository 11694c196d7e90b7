package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a Store keeping one file per key in a directory. Each file is
// replaced atomically.
type Dir struct {
	path string
}

// NewDir creates the directory if needed and returns a store in it.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage directory %q: %w", path, err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) file(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.path, key), nil
}

func (d *Dir) Load(ctx context.Context, key string) (string, bool, error) {
	name, err := d.file(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("could not read %q: %w", name, err)
	}
	return string(data), true, nil
}

func (d *Dir) Save(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, err := d.file(key)
		if err != nil {
			return err
		}
		if err := writeFile(name, value); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes to a temporary file in the same directory and renames it.
func writeFile(name, value string) error {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", name, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		return fmt.Errorf("could not write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write %q: %w", name, err)
	}
	if err := os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("could not replace %q: %w", name, err)
	}
	return nil
}

func (d *Dir) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		name, err := d.file(key)
		if err != nil {
			return err
		}
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not delete %q: %w", name, err)
		}
	}
	return nil
}

// Path returns the storage directory.
func (d *Dir) Path() string { return d.path }

func (d *Dir) Close() error { return nil }

// Package persistence stores the encoded catalog as a single file.
package persistence

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
)

// Store reads and replaces one file on an afero filesystem.
type Store struct {
	fs   afero.Fs
	path string
}

// New returns a Store for path on fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, path string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: path}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the file is present.
func (s *Store) Exists() bool {
	ok, err := afero.Exists(s.fs, s.path)
	return err == nil && ok
}

// Read returns the file contents.
func (s *Store) Read() ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "database", ID: s.path}
		}
		return nil, errors.WrapIO("read", s.path, err)
	}
	return data, nil
}

// Write replaces the file with data. Readers see either the old or the new
// contents: data goes to a temporary file that is renamed over the target.
func (s *Store) Write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return errors.WrapIO("write", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(name)
		return errors.WrapIO("sync", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(name)
		return errors.WrapIO("close", name, err)
	}
	if err := s.fs.Chmod(name, constants.FilePermissions); err != nil {
		_ = s.fs.Remove(name)
		return errors.WrapIO("chmod", name, err)
	}
	if err := s.fs.Rename(name, s.path); err != nil {
		_ = s.fs.Remove(name)
		return errors.WrapIO("rename", s.path, err)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func (s *Store) Remove() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", s.path, err)
	}
	return nil
}

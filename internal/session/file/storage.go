package file

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/krancour/taskdash/internal/file"
	"github.com/krancour/taskdash/internal/session"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const defaultDirName = ".taskdash"

type storage struct {
	dir string
}

// DefaultDir returns the directory, beneath the current user's home
// directory, in which the CLI keeps its files.
func DefaultDir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, defaultDirName), nil
}

// NewStorage returns a session.Storage that keeps each entry in its own file
// within dir. The directory is created when the first entry is written.
func NewStorage(dir string) session.Storage {
	return &storage{
		dir: dir,
	}
}

func (s *storage) GetItem(
	_ context.Context,
	name string,
) ([]byte, bool, error) {
	path := s.path(name)
	if !file.Exists(path) {
		return nil, false, nil
	}
	value, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "error reading file %s", path)
	}
	return value, true, nil
}

func (s *storage) SetItem(
	_ context.Context,
	name string,
	value []byte,
) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, "error creating directory %s", s.dir)
	}
	path := s.path(name)
	if err := ioutil.WriteFile(path, value, 0600); err != nil {
		return errors.Wrapf(err, "error writing file %s", path)
	}
	return nil
}

func (s *storage) RemoveItem(_ context.Context, name string) error {
	path := s.path(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error removing file %s", path)
	}
	return nil
}

func (s *storage) path(name string) string {
	return filepath.Join(s.dir, name)
}

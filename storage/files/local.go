package files

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalStore keeps uploaded files on the local disk under a single root
// directory. Stored paths are always slash-separated so they can be
// served and persisted as-is.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &LocalStore{root: root}, nil
}

// Save writes the uploaded file under a fresh random name, keeping the
// original extension, and returns its stored path.
func (s *LocalStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(s.root, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return filepath.ToSlash(path), nil
}

// Remove deletes a previously stored file.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	return os.Remove(filepath.FromSlash(path))
}

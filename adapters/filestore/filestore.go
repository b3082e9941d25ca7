package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/openclaw"
)

const (
	defaultDir  = ".openclaw-manager"
	defaultFile = "data.json"
)

// DefaultPath is the per user location of the data file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}

	return filepath.Join(home, defaultDir, defaultFile), nil
}

// New returns a Store that keeps the whole document as JSON in the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

type Store struct {
	path string
}

var _ openclaw.Store = (*Store)(nil)

func (s *Store) Path() string {
	return s.path
}

// ReadAll returns an empty document when the file is missing, unreadable or does not
// hold a valid document.
func (s *Store) ReadAll(ctx context.Context) (openclaw.Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return openclaw.Document{}, nil
	}

	var doc openclaw.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return openclaw.Document{}, nil
	}

	return doc, nil
}

// WriteAll writes the document to a temporary file next to the data file and
// renames it into place.
func (s *Store) WriteAll(ctx context.Context, doc openclaw.Document) error {
	if doc.Records == nil {
		doc.Records = []openclaw.Record{}
	}
	if doc.Relations == nil {
		doc.Relations = []openclaw.Relation{}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create data directory", j.MKV{"dir": dir})
	}

	tmp, err := os.CreateTemp(dir, defaultFile+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temporary file", j.MKV{"dir": dir})
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temporary file")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temporary file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temporary file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace data file", j.MKV{"path": s.path})
	}

	return nil
}

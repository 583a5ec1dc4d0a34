package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps a single session in a JSON file so the CLI stays logged in
// between invocations.
type FileStore struct {
	Path string
}

// NewFileStore returns a store at path. An empty path uses
// $XDG_CONFIG_HOME/pmboard/session.json or its platform equivalent.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "pmboard", "session.json")
	}
	return &FileStore{Path: path}, nil
}

// Load reads the stored session. A missing file yields an empty session.
func (f *FileStore) Load() (*Session, error) {
	sess := New()
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	sess.Values = values
	sess.isNew = false
	return sess, nil
}

// Write replaces the stored session.
func (f *FileStore) Write(sess *Session) error {
	if sess == nil {
		return errors.New("session missing")
	}
	data, err := json.MarshalIndent(sess.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return err
	}
	sess.markSaved("")
	return nil
}

// Remove deletes the stored session.
func (f *FileStore) Remove() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

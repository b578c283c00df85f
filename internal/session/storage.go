package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Persisted key names. All three are written together on login and
// cleared together on logout or expiry.
const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeyIssuedAt = "tokenReceivedAt"
)

// Storage is the durable key-value store behind the session. It is an
// interface so the store can be tested without touching the
// filesystem. A missing key is reported through the bool, never as an
// error.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Clear(keys ...string) error
}

const permSessionFile = 0600

// FileStorage persists keys to a single TOML file. A file that is
// missing or unparsable reads as empty: the caller fails closed to an
// anonymous session rather than seeing an error.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

type fileSchema struct {
	Values map[string]string `toml:"values"`
}

func (s *FileStorage) Get(key string) (string, bool) {
	data := s.load()
	value, ok := data.Values[key]
	return value, ok
}

func (s *FileStorage) Set(key, value string) error {
	data := s.load()
	if data.Values == nil {
		data.Values = make(map[string]string)
	}
	data.Values[key] = value
	return s.save(data)
}

func (s *FileStorage) Clear(keys ...string) error {
	data := s.load()
	changed := false
	for _, key := range keys {
		if _, ok := data.Values[key]; ok {
			delete(data.Values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(data)
}

func (s *FileStorage) load() fileSchema {
	var data fileSchema
	if _, err := toml.DecodeFile(s.path, &data); err != nil {
		// Absent or corrupted file reads as empty storage.
		return fileSchema{}
	}
	return data
}

func (s *FileStorage) save(data fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permSessionFile)
	if err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	return nil
}

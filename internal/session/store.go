package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// SessionKey is the fixed key the session blob is persisted under.
const SessionKey = "admin_session"

// ErrNoSession is returned by Store.Load when nothing is persisted.
var ErrNoSession = errors.New("no stored session")

// Store persists the serialized session blob between runs. The browser
// console keeps it in local storage; this backend keeps it on disk (CLI)
// or in memory (tests).
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStore persists the session under <dir>/admin_session.json. Writes are
// last-writer-wins; concurrent logins from two processes converge on the
// later session.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, SessionKey+".json")
}

// Load reads the stored session blob.
func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return data, nil
}

// Save writes the session blob, creating the directory if needed.
func (s *FileStore) Save(data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0o600)
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored blob or ErrNoSession.
func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNoSession
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Save stores a copy of the blob.
func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// Clear drops the stored blob.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

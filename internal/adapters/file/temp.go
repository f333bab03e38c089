package file

import (
	"fmt"
	"imgtool/internal/core/domain"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// TempStore backs transient handles with files in a private temp directory. A handle is the file path.
type TempStore struct {
	dir  string
	mu   sync.Mutex
	live map[domain.Handle]struct{}
}

func NewTempStore() (*TempStore, error) {
	dir, err := os.MkdirTemp("", "imgtool-")
	if err != nil {
		return nil, fmt.Errorf("error creating temp dir %w", err)
	}

	return &TempStore{dir: dir, live: make(map[domain.Handle]struct{})}, nil
}

// Create saves data to a new temp file. The extension of name is kept so viewers can recognize the type.
func (s *TempStore) Create(data []byte, name string) (domain.Handle, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, id.String()+filepath.Ext(name))

	log.Debug().Int("bytes", len(data)).Str("path", path).Msg("creating temp file")

	if err := os.WriteFile(path, data, 0o600); err != nil {
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	h := domain.Handle(path)

	s.mu.Lock()
	s.live[h] = struct{}{}
	s.mu.Unlock()

	return h, nil
}

// Read returns the content behind a live handle.
func (s *TempStore) Read(h domain.Handle) ([]byte, error) {
	s.mu.Lock()
	_, ok := s.live[h]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("handle %s is not live", h)
	}

	buf, err := os.ReadFile(string(h))
	if err != nil {
		err = fmt.Errorf("error reading temp file %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return buf, nil
}

// Revoke removes the file behind a handle. Unknown handles are ignored.
func (s *TempStore) Revoke(h domain.Handle) {
	s.mu.Lock()
	_, ok := s.live[h]
	delete(s.live, h)
	s.mu.Unlock()

	if !ok {
		return
	}

	if err := os.Remove(string(h)); err != nil {
		log.Warn().Str("path", string(h)).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", string(h)).Msg("cleaned up temp file")
}

// Live returns the number of handles not yet revoked.
func (s *TempStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close revokes everything and removes the store directory.
func (s *TempStore) Close() error {
	s.mu.Lock()
	s.live = make(map[domain.Handle]struct{})
	s.mu.Unlock()

	return os.RemoveAll(s.dir)
}

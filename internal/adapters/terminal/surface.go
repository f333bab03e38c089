package terminal

import (
	"errors"
	"imgtool/internal/core/domain"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HandleReader gives access to the content behind a transient handle.
type HandleReader interface {
	Read(handle domain.Handle) ([]byte, error)
}

// Surface reports workflow state on the log and saves results into an output directory.
type Surface struct {
	handles HandleReader
	outDir  string
	log     zerolog.Logger

	mu      sync.Mutex
	saved   string
	lastErr string
}

func NewSurface(handles HandleReader, outDir string, workflow string) *Surface {
	return &Surface{
		handles: handles,
		outDir:  outDir,
		log:     log.With().Str("workflow", workflow).Logger(),
	}
}

func (s *Surface) SetControlEnabled(enabled bool) {
	s.log.Debug().Bool("enabled", enabled).Msg("control toggled")
}

func (s *Surface) ShowBusy(caption string) {
	s.log.Info().Msg(caption)
}

func (s *Surface) HideBusy() {}

func (s *Surface) ShowError(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()

	s.log.Error().Msg(message)
}

func (s *Surface) HideError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Surface) ShowSource(source domain.Descriptor) {
	s.log.Info().Str("size", source.SizeLabel).Msg("selected image")
}

// ShowResult writes the result into the output directory under filename, replacing an existing file.
func (s *Surface) ShowResult(result domain.Descriptor, filename string) {
	data, err := s.handles.Read(result.Handle)
	if err != nil {
		s.log.Error().Err(err).Str("handle", string(result.Handle)).Msg("failed to read result")
		return
	}

	path := filepath.Join(s.outDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("failed to save result")
		return
	}

	s.mu.Lock()
	s.saved = path
	s.mu.Unlock()

	s.log.Info().Str("path", path).Str("size", result.SizeLabel).Msg("saved result")
}

func (s *Surface) HideResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = ""
}

func (s *Surface) HidePreview() {
	s.log.Debug().Msg("preview hidden")
}

// savedPath returns the path of the last saved result, empty when the result region is hidden.
func (s *Surface) savedPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// shownError returns the error currently shown, if any.
func (s *Surface) shownError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastErr == "" {
		return nil
	}
	return errors.New(s.lastErr)
}

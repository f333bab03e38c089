package file

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Fetcher downloads files referenced by URL, e.g. attachments of chat messages.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{}}
}

// Fetch returns the byte content of a file on a provided URL.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Send()
		return nil, err
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, domain.MaxUploadBytes+1))
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	if len(buf) > domain.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	return buf, nil
}

// Load reads a file selected on disk.
func Load(path string) (*domain.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading selected file %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if info.Size() > domain.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading selected file %w", err)
	}

	log.Debug().Str("path", path).Int("bytes", len(buf)).Msg("loaded selected file")

	return &domain.File{Name: filepath.Base(path), Size: int64(len(buf)), Data: buf}, nil
}

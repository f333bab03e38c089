package command

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
)

// loadFile fetches the image attached to message. It returns nil when there is none.
func loadFile(ctx context.Context, fetcher port.FileFetcher, message *domain.Message) (*domain.File, error) {
	if message.FileURL == "" {
		return nil, nil
	}

	if message.FileSize > domain.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := fetcher.Fetch(ctx, message.FileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}

	return &domain.File{Name: message.FileName, Size: int64(len(data)), Data: data}, nil
}

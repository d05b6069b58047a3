package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"RateBot/internal/domain/models"
	"RateBot/pkg/logger"

	"github.com/dustin/go-humanize"
)

// FileStore keeps the most recent artifact at a fixed path. Each Save
// replaces the previous file.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Save writes the PNG through a temp file and a rename, so readers never see
// a partial image.
func (s *FileStore) Save(ctx context.Context, artifact *models.ReportArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if artifact == nil || len(artifact.PNG) == 0 {
		return "", fmt.Errorf("save artifact: empty artifact")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.png")
	if err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.PNG); err != nil {
		tmp.Close()
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}

	s.log.Debug("artifact written",
		logger.String("path", s.path),
		logger.String("size", humanize.Bytes(uint64(len(artifact.PNG)))))
	return s.path, nil
}

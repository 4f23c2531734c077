package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"meetingSummarize/core"
)

// AudioStore writes raw upload bytes under a year/month partition with one
// directory per upload: <root>/<year>/<month>/<uuid>/<original filename>.
type AudioStore struct {
	Root string
}

func NewAudioStore(root string) *AudioStore {
	return &AudioStore{Root: root}
}

// Store persists the blob and returns its path. Write-once; nothing ever
// mutates a stored recording.
func (s *AudioStore) Store(data []byte, filename string) (string, error) {
	now := time.Now()
	dir := filepath.Join(s.Root, now.Format("2006"), now.Format("01"), uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create recording dir: %w: %v", core.ErrIO, err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write recording: %w: %v", core.ErrIO, err)
	}
	return path, nil
}

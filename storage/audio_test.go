package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAudioStoreLayout(t *testing.T) {
	root := t.TempDir()
	store := NewAudioStore(root)

	path, err := store.Store([]byte("RIFF fake wav"), "weekly sync.wav")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Stored file unreadable: %v", err)
	}
	if string(data) != "RIFF fake wav" {
		t.Errorf("Stored bytes differ from upload")
	}

	// <root>/<year>/<month>/<id>/<filename>
	rel, err := filepath.Rel(root, path)
	if err != nil {
		t.Fatalf("Rel() failed: %v", err)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 4 {
		t.Fatalf("Expected year/month/id/filename layout, got %s", rel)
	}
	now := time.Now()
	if parts[0] != now.Format("2006") || parts[1] != now.Format("01") {
		t.Errorf("Expected %s/%s partition, got %s/%s", now.Format("2006"), now.Format("01"), parts[0], parts[1])
	}
	if parts[3] != "weekly sync.wav" {
		t.Errorf("Expected original filename, got %s", parts[3])
	}
}

func TestAudioStoreUniqueDirs(t *testing.T) {
	store := NewAudioStore(t.TempDir())

	first, err := store.Store([]byte("a"), "same.mp3")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	second, err := store.Store([]byte("b"), "same.mp3")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if first == second {
		t.Errorf("Two uploads of the same filename share a path: %s", first)
	}
}

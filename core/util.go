package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// RecordingsRoot is where uploaded audio blobs live, partitioned by date and
// upload id underneath.
func RecordingsRoot() string {
	if v := os.Getenv("RECORDINGS_ROOT"); v != "" {
		return v
	}
	return filepath.Join(".", "recordings")
}

func NewID() string {
	return uuid.NewString()
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "write json error: %v", err)
	}
}

package core

import "errors"

// Error taxonomy for the pipeline. Stage and gateway errors wrap one of these
// sentinels so callers can classify with errors.Is without depending on the
// underlying driver or client error types.
var (
	// ErrNotFound marks an unknown task, meeting or transcription id.
	ErrNotFound = errors.New("not found")

	// ErrIO marks a filesystem failure while persisting an audio blob.
	ErrIO = errors.New("io error")

	// ErrStorage marks a datastore constraint or connection failure.
	ErrStorage = errors.New("storage error")

	// ErrTranscription marks audio the speech-to-text engine cannot process.
	ErrTranscription = errors.New("transcription error")

	// ErrParse marks model output that is not valid JSON.
	ErrParse = errors.New("parse error")
)

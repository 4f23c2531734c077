package core

import (
	"time"
)

// ========== Task tracking ==========

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskError      TaskStatus = "error"
)

// Terminal reports whether a status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskError
}

// TaskState is the tracked state of one upload's pipeline run. Entries are
// replaced wholesale on every transition, never field-patched.
type TaskState struct {
	ID        string         `json:"task_id"`
	Status    TaskStatus     `json:"status"`
	Progress  int            `json:"progress"`
	Filename  string         `json:"filename"`
	Result    *MeetingResult `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"-"`
}

// ========== Summarization ==========

// MeetingSummary is the structured output of the summarization stage.
type MeetingSummary struct {
	Title        string   `json:"title"`
	KeyPoints    []string `json:"key_points"`
	ActionItems  []string `json:"action_items"`
	Summary      string   `json:"summary"`
	Participants []string `json:"participants"`
}

// ========== Persistent records ==========

type Transcription struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"created_at"`
}

type Meeting struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	TranscriptID int64     `json:"transcript_id"`
	Summary      string    `json:"summary"`
	Participants []string  `json:"participants"`
	KeyPoints    []string  `json:"key_points"`
	ActionItems  []string  `json:"action_items"`
	CreatedAt    time.Time `json:"created_at"`
}

// MeetingResult is the subset of a stored meeting attached to a completed task.
type MeetingResult struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	TranscriptID int64     `json:"transcript_id"`
	KeyPoints    []string  `json:"key_points"`
	ActionItems  []string  `json:"action_items"`
	CreatedAt    time.Time `json:"created_at"`
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meetingSummarize/core"
	"meetingSummarize/logger"
	"meetingSummarize/processors"
	"meetingSummarize/storage"
	"meetingSummarize/tasks"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryGateway) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	gw := storage.NewMemoryGateway()
	tracker := tasks.NewTracker(0)
	t.Cleanup(tracker.Close)

	log := logger.New()
	pipeline := &processors.Pipeline{
		Tracker:    tracker,
		OpenStore:  gw.Opener(),
		Audio:      storage.NewAudioStore(t.TempDir()),
		ASR:        processors.MockASR{},
		Summarizer: processors.MockSummarizer{},
		Log:        log.WithField("component", "pipeline"),
	}
	srv := &Server{
		Pipeline:  pipeline,
		Tracker:   tracker,
		OpenStore: gw.Opener(),
		Log:       log,
	}
	mux := http.NewServeMux()
	srv.Routes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, gw
}

func uploadAudio(t *testing.T, ts *httptest.Server, filename string) string {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	fw.Write([]byte("fake audio content"))
	w.Close()

	resp, err := http.Post(ts.URL+"/meeting/upload-audio", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload returned %d: %s", resp.StatusCode, body)
	}

	var out struct {
		TaskID  string `json:"task_id"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if out.Status != "pending" {
		t.Errorf("Expected pending status, got %q", out.Status)
	}
	if out.TaskID == "" {
		t.Fatal("Expected a task id")
	}
	return out.TaskID
}

func pollUntilTerminal(t *testing.T, ts *httptest.Server, taskID string) core.TaskState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/meeting/processing-status/" + taskID)
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			t.Fatalf("status returned %d", resp.StatusCode)
		}
		var state core.TaskState
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		resp.Body.Close()
		if state.Status.Terminal() {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", taskID)
	return core.TaskState{}
}

func TestUploadAndPollToCompletion(t *testing.T) {
	ts, gw := newTestServer(t)

	taskID := uploadAudio(t, ts, "retro.mp3")
	state := pollUntilTerminal(t, ts, taskID)
	if state.Status != core.TaskCompleted {
		t.Fatalf("Expected completed, got %s (error: %s)", state.Status, state.Error)
	}
	if state.Result == nil {
		t.Fatal("Expected meeting result on completed task")
	}

	// The meeting is readable through the API.
	resp, err := http.Get(fmt.Sprintf("%s/meeting/get_meeting_by_id/%d", ts.URL, state.Result.ID))
	if err != nil {
		t.Fatalf("get meeting failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get meeting returned %d", resp.StatusCode)
	}
	var meeting core.Meeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		t.Fatalf("decode meeting: %v", err)
	}
	if meeting.ID != state.Result.ID {
		t.Errorf("Expected meeting %d, got %d", state.Result.ID, meeting.ID)
	}
	if _, err := gw.GetTranscription(context.Background(), meeting.TranscriptID); err != nil {
		t.Errorf("Completed meeting references missing transcription: %v", err)
	}
}

func TestProcessingStatusUnknownTask(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/meeting/processing-status/task_nope")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMeetingByIDNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/meeting/get_meeting_by_id/12345")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestGetMeetingsPagination(t *testing.T) {
	ts, gw := newTestServer(t)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tr, err := gw.SaveTranscription(ctx, "t", fmt.Sprintf("m%d.mp3", i))
		if err != nil {
			t.Fatalf("SaveTranscription() failed: %v", err)
		}
		if _, err := gw.SaveMeeting(ctx, core.Meeting{
			Title: fmt.Sprintf("meeting %d", i), Date: time.Now(), TranscriptID: tr.ID,
			Participants: []string{}, KeyPoints: []string{}, ActionItems: []string{},
		}); err != nil {
			t.Fatalf("SaveMeeting() failed: %v", err)
		}
	}

	resp, err := http.Get(ts.URL + "/meeting/get_meetings?skip=1&limit=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var meetings []core.Meeting
	if err := json.NewDecoder(resp.Body).Decode(&meetings); err != nil {
		t.Fatalf("decode meetings: %v", err)
	}
	if len(meetings) != 1 {
		t.Fatalf("Expected 1 meeting, got %d", len(meetings))
	}
	if meetings[0].Title != "meeting 1" {
		t.Errorf("Expected meeting 1, got %q", meetings[0].Title)
	}
}

func TestDeleteMeetingTwice(t *testing.T) {
	ts, gw := newTestServer(t)

	ctx := context.Background()
	tr, _ := gw.SaveTranscription(ctx, "t", "m.mp3")
	m, err := gw.SaveMeeting(ctx, core.Meeting{
		Title: "doomed", Date: time.Now(), TranscriptID: tr.ID,
		Participants: []string{}, KeyPoints: []string{}, ActionItems: []string{},
	})
	if err != nil {
		t.Fatalf("SaveMeeting() failed: %v", err)
	}

	url := fmt.Sprintf("%s/meeting/delete_meeting/%d", ts.URL, m.ID)
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on first delete, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, url, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/meeting/upload-audio", "application/x-www-form-urlencoded", bytes.NewBufferString("nope"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"meetingSummarize/core"
	"meetingSummarize/logger"
	"meetingSummarize/processors"
	"meetingSummarize/storage"
	"meetingSummarize/tasks"
)

const maxUploadBytes = 200 << 20

// Server wires the meeting routes to the pipeline, tracker and store.
type Server struct {
	Pipeline  *processors.Pipeline
	Tracker   *tasks.Tracker
	OpenStore storage.Opener
	Log       *logger.Logger
}

type uploadResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Routes registers the meeting endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /meeting/upload-audio", s.uploadAudio)
	mux.HandleFunc("GET /meeting/processing-status/{task_id}", s.processingStatus)
	mux.HandleFunc("GET /meeting/get_meetings", s.getMeetings)
	mux.HandleFunc("GET /meeting/get_meeting_by_id/{id}", s.getMeetingByID)
	mux.HandleFunc("DELETE /meeting/delete_meeting/{id}", s.deleteMeeting)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		core.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) uploadAudio(w http.ResponseWriter, r *http.Request) {
	log := s.Log.WithRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.WithField("error", err.Error()).Warn("invalid multipart upload")
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to read upload")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
		return
	}

	taskID := s.Pipeline.Submit(content, header.Filename)
	log.WithField("task_id", taskID).WithField("filename", header.Filename).Info("processing started")

	core.WriteJSON(w, http.StatusOK, uploadResponse{
		TaskID:  taskID,
		Message: "Processing started",
		Status:  string(core.TaskPending),
	})
}

func (s *Server) processingStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	state, err := s.Tracker.Get(taskID)
	if err != nil {
		core.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
		return
	}
	core.WriteJSON(w, http.StatusOK, state)
}

func (s *Server) getMeetings(w http.ResponseWriter, r *http.Request) {
	log := s.Log.WithRequest(r)

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	store, err := s.OpenStore(r.Context())
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to open storage")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	defer store.Close(r.Context())

	meetings, err := store.ListMeetings(r.Context(), skip, limit)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to list meetings")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch meetings"})
		return
	}
	core.WriteJSON(w, http.StatusOK, meetings)
}

func (s *Server) getMeetingByID(w http.ResponseWriter, r *http.Request) {
	log := s.Log.WithRequest(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meeting id"})
		return
	}

	store, err := s.OpenStore(r.Context())
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to open storage")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	defer store.Close(r.Context())

	meeting, err := store.GetMeeting(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		core.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Meeting not found"})
		return
	}
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to fetch meeting")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch meeting"})
		return
	}
	core.WriteJSON(w, http.StatusOK, meeting)
}

func (s *Server) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	log := s.Log.WithRequest(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meeting id"})
		return
	}

	store, err := s.OpenStore(r.Context())
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to open storage")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	defer store.Close(r.Context())

	deleted, err := store.DeleteMeeting(r.Context(), id)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to delete meeting")
		core.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete meeting"})
		return
	}
	if !deleted {
		core.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Meeting not found"})
		return
	}
	log.WithField("meeting_id", id).Info("meeting deleted")
	core.WriteJSON(w, http.StatusOK, map[string]string{"message": "Meeting deleted successfully"})
}

package processors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"meetingSummarize/core"
	"meetingSummarize/storage"
	"meetingSummarize/tasks"
)

// Pipeline sequences the stages of one upload: persist audio, transcribe,
// summarize, persist records. Each upload runs detached from its originating
// request; the caller polls the tracker for progress. Stages within a task
// are strictly sequential and none of them is retried — any failure is
// terminal for the task and already persisted records stay (a transcription
// row may exist with no meeting row).
type Pipeline struct {
	Tracker    *tasks.Tracker
	OpenStore  storage.Opener
	Audio      *storage.AudioStore
	ASR        ASRProvider
	Summarizer Summarizer
	Log        *logrus.Entry
}

// Progress checkpoints reported at stage boundaries.
const (
	progressStored      = 20
	progressTranscribed = 50
	progressSaved       = 70
	progressSummarized  = 90
)

// Submit registers a pending task and schedules the pipeline run in the
// background, returning the task id immediately.
func (p *Pipeline) Submit(fileContent []byte, filename string) string {
	taskID := "task_" + core.NewID()
	p.Tracker.Create(taskID, filename)
	go p.run(context.Background(), taskID, fileContent, filename)
	return taskID
}

func (p *Pipeline) run(ctx context.Context, taskID string, fileContent []byte, filename string) {
	log := p.Log.WithField("task_id", taskID)

	// One gateway session per run, released on every exit path.
	store, err := p.OpenStore(ctx)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to open storage")
		p.Tracker.Fail(taskID, err.Error())
		return
	}
	defer store.Close(ctx)

	p.Tracker.SetProgress(taskID, 0)

	audioPath, err := p.Audio.Store(fileContent, filename)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to store audio")
		p.Tracker.Fail(taskID, err.Error())
		return
	}
	p.Tracker.SetProgress(taskID, progressStored)
	log.WithField("audio_path", audioPath).Info("audio stored")

	text, err := p.ASR.Transcribe(ctx, audioPath)
	if err != nil {
		log.WithField("error", err.Error()).Error("transcription failed")
		p.Tracker.Fail(taskID, err.Error())
		return
	}
	p.Tracker.SetProgress(taskID, progressTranscribed)

	transcription, err := store.SaveTranscription(ctx, text, filename)
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to save transcription")
		p.Tracker.Fail(taskID, err.Error())
		return
	}
	p.Tracker.SetProgress(taskID, progressSaved)
	log.WithField("transcript_id", transcription.ID).Info("transcription saved")

	summary, err := p.Summarizer.Summarize(ctx, transcription.Transcript)
	if err != nil {
		log.WithField("error", err.Error()).Error("summarization failed")
		p.Tracker.Fail(taskID, err.Error())
		return
	}

	meeting, err := store.SaveMeeting(ctx, core.Meeting{
		Title:        summary.Title,
		Date:         time.Now(),
		TranscriptID: transcription.ID,
		Summary:      summary.Summary,
		Participants: summary.Participants,
		KeyPoints:    summary.KeyPoints,
		ActionItems:  summary.ActionItems,
	})
	if err != nil {
		log.WithField("error", err.Error()).Error("failed to save meeting")
		p.Tracker.Fail(taskID, err.Error())
		return
	}
	p.Tracker.SetProgress(taskID, progressSummarized)

	p.Tracker.Complete(taskID, &core.MeetingResult{
		ID:           meeting.ID,
		Title:        meeting.Title,
		Date:         meeting.Date,
		TranscriptID: meeting.TranscriptID,
		KeyPoints:    meeting.KeyPoints,
		ActionItems:  meeting.ActionItems,
		CreatedAt:    meeting.CreatedAt,
	})
	log.WithField("meeting_id", meeting.ID).Info("processing completed")
}

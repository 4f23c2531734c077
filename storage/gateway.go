package storage

import (
	"context"

	"meetingSummarize/core"
)

// Gateway abstracts the relational store behind the pipeline and the read
// endpoints. Implementations are not required to be safe for concurrent use;
// each pipeline run and each request opens its own gateway via an Opener and
// closes it when done.
type Gateway interface {
	SaveTranscription(ctx context.Context, transcript, fileName string) (core.Transcription, error)
	GetTranscription(ctx context.Context, id int64) (core.Transcription, error)
	SaveMeeting(ctx context.Context, m core.Meeting) (core.Meeting, error)
	GetMeeting(ctx context.Context, id int64) (core.Meeting, error)
	ListMeetings(ctx context.Context, skip, limit int) ([]core.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) (bool, error)
	Close(ctx context.Context) error
}

// Opener acquires a gateway session scoped to one pipeline run or request.
type Opener func(ctx context.Context) (Gateway, error)

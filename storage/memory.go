package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetingSummarize/core"
)

// MemoryGateway is an in-process implementation kept for fallback when no
// database is configured, and for tests. One shared instance backs every
// session handed out by its Opener.
type MemoryGateway struct {
	mu             sync.RWMutex
	transcriptions map[int64]core.Transcription
	meetings       map[int64]core.Meeting
	nextTranscript int64
	nextMeeting    int64
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		transcriptions: make(map[int64]core.Transcription),
		meetings:       make(map[int64]core.Meeting),
	}
}

// Opener returns an Opener whose sessions all share this gateway.
func (g *MemoryGateway) Opener() Opener {
	return func(ctx context.Context) (Gateway, error) {
		return g, nil
	}
}

func (g *MemoryGateway) Close(ctx context.Context) error { return nil }

func (g *MemoryGateway) SaveTranscription(ctx context.Context, transcript, fileName string) (core.Transcription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextTranscript++
	rec := core.Transcription{
		ID:         g.nextTranscript,
		FileName:   fileName,
		Transcript: transcript,
		CreatedAt:  time.Now(),
	}
	g.transcriptions[rec.ID] = rec
	return rec, nil
}

func (g *MemoryGateway) GetTranscription(ctx context.Context, id int64) (core.Transcription, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.transcriptions[id]
	if !ok {
		return core.Transcription{}, fmt.Errorf("transcription %d: %w", id, core.ErrNotFound)
	}
	return rec, nil
}

func (g *MemoryGateway) SaveMeeting(ctx context.Context, m core.Meeting) (core.Meeting, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.transcriptions[m.TranscriptID]; !ok {
		return core.Meeting{}, fmt.Errorf("save meeting: transcript %d missing: %w", m.TranscriptID, core.ErrStorage)
	}
	g.nextMeeting++
	m.ID = g.nextMeeting
	m.CreatedAt = time.Now()
	g.meetings[m.ID] = m
	return m, nil
}

func (g *MemoryGateway) GetMeeting(ctx context.Context, id int64) (core.Meeting, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.meetings[id]
	if !ok {
		return core.Meeting{}, fmt.Errorf("meeting %d: %w", id, core.ErrNotFound)
	}
	return rec, nil
}

func (g *MemoryGateway) ListMeetings(ctx context.Context, skip, limit int) ([]core.Meeting, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	meetings := make([]core.Meeting, 0)
	// ids are assigned sequentially, so iterate in insertion order
	for id := int64(1); id <= g.nextMeeting; id++ {
		if rec, ok := g.meetings[id]; ok {
			meetings = append(meetings, rec)
		}
	}
	if skip >= len(meetings) {
		return []core.Meeting{}, nil
	}
	meetings = meetings[skip:]
	if len(meetings) > limit {
		meetings = meetings[:limit]
	}
	return meetings, nil
}

func (g *MemoryGateway) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.meetings[id]; !ok {
		return false, nil
	}
	delete(g.meetings, id)
	return true, nil
}

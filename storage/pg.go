package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"

	"meetingSummarize/core"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id BIGSERIAL PRIMARY KEY,
	file_name TEXT,
	transcript TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS meetings (
	id BIGSERIAL PRIMARY KEY,
	title TEXT,
	date TIMESTAMPTZ NOT NULL,
	transcript_id BIGINT NOT NULL REFERENCES transcriptions(id),
	summary TEXT,
	participants TEXT[] NOT NULL DEFAULT '{}',
	key_points TEXT[] NOT NULL DEFAULT '{}',
	action_items TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PgGateway persists transcriptions and meetings in Postgres over a single
// pgx connection. List fields use native text[] columns, so nothing outside
// this package ever sees an encoded form.
type PgGateway struct {
	conn *pgx.Conn
}

// OpenPg connects and pings. The caller owns the connection and must Close.
func OpenPg(ctx context.Context, dbURL string) (*PgGateway, error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w: %v", core.ErrStorage, err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w: %v", core.ErrStorage, err)
	}
	return &PgGateway{conn: conn}, nil
}

// NewPgOpener returns an Opener that dials a fresh connection per session.
func NewPgOpener(dbURL string) Opener {
	return func(ctx context.Context) (Gateway, error) {
		return OpenPg(ctx, dbURL)
	}
}

// EnsureSchema creates the tables, retrying while the database comes up.
func EnsureSchema(ctx context.Context, dbURL string) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		conn, err := pgx.Connect(ctx, dbURL)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		_, err = conn.Exec(ctx, schemaDDL)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("ensure schema: %w: %v", core.ErrStorage, err)
	}
	return nil
}

func (g *PgGateway) Close(ctx context.Context) error {
	return g.conn.Close(ctx)
}

func (g *PgGateway) SaveTranscription(ctx context.Context, transcript, fileName string) (core.Transcription, error) {
	var rec core.Transcription
	err := g.conn.QueryRow(ctx,
		`INSERT INTO transcriptions (file_name, transcript)
		 VALUES ($1, $2)
		 RETURNING id, file_name, transcript, created_at`,
		fileName, transcript,
	).Scan(&rec.ID, &rec.FileName, &rec.Transcript, &rec.CreatedAt)
	if err != nil {
		return core.Transcription{}, fmt.Errorf("save transcription: %w: %v", core.ErrStorage, err)
	}
	return rec, nil
}

func (g *PgGateway) GetTranscription(ctx context.Context, id int64) (core.Transcription, error) {
	var rec core.Transcription
	err := g.conn.QueryRow(ctx,
		`SELECT id, file_name, transcript, created_at FROM transcriptions WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.FileName, &rec.Transcript, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transcription{}, fmt.Errorf("transcription %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transcription{}, fmt.Errorf("get transcription: %w: %v", core.ErrStorage, err)
	}
	return rec, nil
}

func (g *PgGateway) SaveMeeting(ctx context.Context, m core.Meeting) (core.Meeting, error) {
	// The FK on transcript_id enforces transcript-before-meeting; a violation
	// surfaces as a storage error, not silent partial data.
	var rec core.Meeting
	err := g.conn.QueryRow(ctx,
		`INSERT INTO meetings (title, date, transcript_id, summary, participants, key_points, action_items)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, title, date, transcript_id, summary, participants, key_points, action_items, created_at`,
		m.Title, m.Date, m.TranscriptID, m.Summary, m.Participants, m.KeyPoints, m.ActionItems,
	).Scan(&rec.ID, &rec.Title, &rec.Date, &rec.TranscriptID, &rec.Summary,
		&rec.Participants, &rec.KeyPoints, &rec.ActionItems, &rec.CreatedAt)
	if err != nil {
		return core.Meeting{}, fmt.Errorf("save meeting: %w: %v", core.ErrStorage, err)
	}
	return rec, nil
}

func (g *PgGateway) GetMeeting(ctx context.Context, id int64) (core.Meeting, error) {
	var rec core.Meeting
	err := g.conn.QueryRow(ctx,
		`SELECT id, title, date, transcript_id, summary, participants, key_points, action_items, created_at
		 FROM meetings WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Title, &rec.Date, &rec.TranscriptID, &rec.Summary,
		&rec.Participants, &rec.KeyPoints, &rec.ActionItems, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Meeting{}, fmt.Errorf("meeting %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Meeting{}, fmt.Errorf("get meeting: %w: %v", core.ErrStorage, err)
	}
	return rec, nil
}

func (g *PgGateway) ListMeetings(ctx context.Context, skip, limit int) ([]core.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := g.conn.Query(ctx,
		`SELECT id, title, date, transcript_id, summary, participants, key_points, action_items, created_at
		 FROM meetings ORDER BY id OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	meetings := make([]core.Meeting, 0)
	for rows.Next() {
		var rec core.Meeting
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Date, &rec.TranscriptID, &rec.Summary,
			&rec.Participants, &rec.KeyPoints, &rec.ActionItems, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meeting: %w: %v", core.ErrStorage, err)
		}
		meetings = append(meetings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list meetings: %w: %v", core.ErrStorage, err)
	}
	return meetings, nil
}

// DeleteMeeting removes the row. The transcription row and the audio blob are
// kept as an audit trail.
func (g *PgGateway) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	tag, err := g.conn.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete meeting: %w: %v", core.ErrStorage, err)
	}
	return tag.RowsAffected() > 0, nil
}

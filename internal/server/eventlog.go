package server

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// EventTypeResponseSubmitted is appended for every accepted submission.
const EventTypeResponseSubmitted = "TestResponseSubmitted"

type Event struct {
	Offset    int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// EventLog is the server's append-only audit trail of submissions.
// A nil EventLog (memory-store deployments) drops events with a log
// line instead of failing the request.
type EventLog struct{ db *sql.DB }

func NewEventLog(db *sql.DB) *EventLog { return &EventLog{db: db} }

func (l *EventLog) Append(ctx context.Context, e Event) error {
	if l == nil || l.db == nil {
		log.Printf("eventlog: no backing db, dropping %s %s", e.Type, e.Key)
		return nil
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

func (l *EventLog) Since(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT offset, typ, key, data, created_at FROM event_log WHERE offset > $1 ORDER BY offset LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package persistence

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/atlasforge/chronicle/internal/engine"
)

// Archive is a SQLite-backed sink for the two things the JSON save format
// deliberately drops: the unbounded latent event history, and periodic
// full-state snapshots kept for after-the-fact inspection. Events are
// only appended and queried; a snapshot can be restored by passing
// LoadSnapshot's JSON to Deserialize. Grounded on the teacher's internal/persistence/db.go
// migrate/tx idiom.
type Archive struct {
	conn *sqlx.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// OpenArchive opens or creates a SQLite database at path.
func OpenArchive(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		enc.Close()
		return nil, fmt.Errorf("archive: init zstd decoder: %w", err)
	}
	a.enc, a.dec = enc, dec
	return a, nil
}

// Close releases the underlying connection and codec resources.
func (a *Archive) Close() error {
	a.enc.Close()
	a.dec.Close()
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		message TEXT NOT NULL,
		category TEXT NOT NULL,
		loc_x INTEGER,
		loc_y INTEGER
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		taken_at_ms INTEGER NOT NULL,
		state_zstd BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_year ON events(year);
	CREATE INDEX IF NOT EXISTS idx_snapshots_year ON snapshots(year);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// AppendEvents writes events not yet archived. Callers pass the tail of
// EventLog.Latent() they haven't archived yet; this never deletes or
// replaces rows, unlike the teacher's full-replace SaveAgents/SaveSettlements.
func (a *Archive) AppendEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := a.conn.Beginx()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events (year, message, category, loc_x, loc_y)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		var locX, locY any
		if e.Location != nil {
			locX, locY = e.Location.X, e.Location.Y
		}
		if _, err := stmt.Exec(e.Year, e.Message, string(e.Category), locX, locY); err != nil {
			return fmt.Errorf("archive: insert event: %w", err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recently archived events, newest first.
func (a *Archive) RecentEvents(limit int) ([]engine.Event, error) {
	type row struct {
		Year     int    `db:"year"`
		Message  string `db:"message"`
		Category string `db:"category"`
		LocX     *int   `db:"loc_x"`
		LocY     *int   `db:"loc_y"`
	}
	var rows []row
	err := a.conn.Select(&rows,
		"SELECT year, message, category, loc_x, loc_y FROM events ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query recent events: %w", err)
	}

	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		e := engine.Event{Year: r.Year, Message: r.Message, Category: engine.Category(r.Category)}
		if r.LocX != nil && r.LocY != nil {
			e.Location = &engine.Location{X: *r.LocX, Y: *r.LocY}
		}
		events[i] = e
	}
	return events, nil
}

// SaveSnapshot compresses sim's §6 JSON serialization with zstd and stores
// it alongside the year it was taken at, for history that outlives the
// single-slot save file.
func (a *Archive) SaveSnapshot(sim *engine.Simulation, takenAtMs int64) error {
	raw, err := Serialize(sim)
	if err != nil {
		return fmt.Errorf("archive: serialize snapshot: %w", err)
	}
	compressed := a.enc.EncodeAll(raw, nil)

	_, err = a.conn.Exec(
		"INSERT INTO snapshots (year, taken_at_ms, state_zstd) VALUES (?, ?, ?)",
		sim.Year, takenAtMs, compressed,
	)
	if err != nil {
		return fmt.Errorf("archive: insert snapshot: %w", err)
	}
	slog.Info("snapshot archived", "year", sim.Year, "bytes_raw", len(raw), "bytes_zstd", len(compressed))
	return nil
}

// LoadSnapshot decompresses and returns the raw §6 JSON of the snapshot
// nearest to (at or before) year, for Deserialize to consume.
func (a *Archive) LoadSnapshot(year int) ([]byte, error) {
	var compressed []byte
	err := a.conn.Get(&compressed,
		"SELECT state_zstd FROM snapshots WHERE year <= ? ORDER BY year DESC LIMIT 1", year)
	if err != nil {
		return nil, fmt.Errorf("archive: query snapshot at year %d: %w", year, err)
	}
	raw, err := a.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: decompress snapshot: %w", err)
	}
	return raw, nil
}

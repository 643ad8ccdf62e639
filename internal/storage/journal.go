package storage

import (
	"fmt"
	"time"

	"github.com/vovakirdan/desksnake/internal/games/snake"
	"github.com/vovakirdan/desksnake/internal/session"
)

// OutcomeRunning marks a session that has not reported its end yet.
const OutcomeRunning = "running"

// OutcomeError marks a session that stopped before it could report an outcome.
const OutcomeError = "error"

// Meta identifies where a session was played.
type Meta struct {
	Surface string // "terminal", "ssh", "headless"
	Player  string // SSH user, empty for local play
}

// SessionEntry is one recorded session.
type SessionEntry struct {
	ID        int64
	Surface   string
	Player    string
	Seed      int64
	Outcome   string
	Length    int
	Total     int
	Ticks     uint64
	Cols      int
	Rows      int
	Interval  time.Duration
	Duration  time.Duration
	Error     string
	StartedAt time.Time
}

// TickEntry is the recorded state after one tick.
type TickEntry struct {
	SessionID int64
	snake.Snapshot
}

// Recording journals a single session. It implements session.Observer and
// is driven from the session goroutine only.
type Recording struct {
	j  *Journal
	id int64
}

var _ session.Observer = (*Recording)(nil)

// Begin opens a new session record.
func (j *Journal) Begin(meta Meta) (*Recording, error) {
	res, err := j.db.Exec(
		"INSERT INTO sessions (surface, player) VALUES (?, ?)",
		meta.Surface, meta.Player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot begin session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return &Recording{j: j, id: id}, nil
}

// ID returns the session record ID.
func (r *Recording) ID() int64 {
	return r.id
}

// SessionStarted stores the playfield the session runs on.
func (r *Recording) SessionStarted(info session.Info) error {
	_, err := r.j.db.Exec(
		`UPDATE sessions
		 SET seed = ?, total = ?, grid_cols = ?, grid_rows = ?, interval_ms = ?
		 WHERE id = ?`,
		info.Seed, info.Total, info.Cols, info.Rows, info.Interval.Milliseconds(), r.id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record session start: %w", err)
	}
	return nil
}

// TickCompleted implements session.Observer.
func (r *Recording) TickCompleted(snap snake.Snapshot) error {
	return r.Tick(snap)
}

// SessionEnded implements session.Observer.
func (r *Recording) SessionEnded(res session.Result) error {
	return r.Finish(res)
}

// Tick appends the state after one tick.
func (r *Recording) Tick(snap snake.Snapshot) error {
	_, err := r.j.db.Exec(
		`INSERT INTO ticks
		 (session_id, tick, length, head_x, head_y, dir, food_x, food_y, food_eaten, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, snap.Tick, snap.Length, snap.HeadX, snap.HeadY, int(snap.Dir),
		snap.FoodX, snap.FoodY, snap.FoodEaten, string(snap.State),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record tick %d: %w", snap.Tick, err)
	}
	return nil
}

// Finish stores the session outcome.
func (r *Recording) Finish(res session.Result) error {
	_, err := r.j.db.Exec(
		`UPDATE sessions
		 SET outcome = ?, length = ?, total = ?, ticks = ?, seed = ?, duration_ms = ?
		 WHERE id = ?`,
		string(res.Outcome), res.Length, res.Total, res.Ticks, res.Seed, res.Duration.Milliseconds(), r.id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish session: %w", err)
	}
	return nil
}

// Abort marks a session that failed before reporting an outcome.
// Sessions that already finished keep their outcome.
func (r *Recording) Abort(cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.j.db.Exec(
		`UPDATE sessions
		 SET outcome = CASE WHEN outcome = ? THEN ? ELSE outcome END, error = ?
		 WHERE id = ?`,
		OutcomeRunning, OutcomeError, msg, r.id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot abort session: %w", err)
	}
	return nil
}

const sessionColumns = `id, surface, player, seed, outcome, length, total, ticks,
	grid_cols, grid_rows, interval_ms, duration_ms, error, started_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionEntry, error) {
	var e SessionEntry
	var intervalMS, durationMS int64
	var startedAt any
	err := row.Scan(
		&e.ID, &e.Surface, &e.Player, &e.Seed, &e.Outcome, &e.Length, &e.Total, &e.Ticks,
		&e.Cols, &e.Rows, &intervalMS, &durationMS, &e.Error, &startedAt,
	)
	if err != nil {
		return e, err
	}
	e.Interval = time.Duration(intervalMS) * time.Millisecond
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.StartedAt = parseTime(startedAt)
	return e, nil
}

// Session retrieves one session by ID. Returns nil if it does not exist.
func (j *Journal) Session(id int64) (*SessionEntry, error) {
	e, err := scanSession(j.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &e, nil
}

// Recent retrieves the most recent sessions, newest first.
func (j *Journal) Recent(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		e, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Ticks retrieves every recorded tick of a session in order.
func (j *Journal) Ticks(sessionID int64) ([]TickEntry, error) {
	rows, err := j.db.Query(
		`SELECT session_id, tick, length, head_x, head_y, dir, food_x, food_y, food_eaten, state
		 FROM ticks
		 WHERE session_id = ?
		 ORDER BY tick`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ticks: %w", err)
	}
	defer rows.Close()

	var entries []TickEntry
	for rows.Next() {
		var e TickEntry
		var dir int
		var state string
		if err := rows.Scan(
			&e.SessionID, &e.Tick, &e.Length, &e.HeadX, &e.HeadY, &dir,
			&e.FoodX, &e.FoodY, &e.FoodEaten, &state,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan tick: %w", err)
		}
		e.Dir = snake.Direction(dir)
		e.State = snake.State(state)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// OutcomeCounts returns how many sessions ended with each outcome.
func (j *Journal) OutcomeCounts() (map[string]int, error) {
	rows, err := j.db.Query(`SELECT outcome, COUNT(*) FROM sessions GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan outcome row: %w", err)
		}
		counts[outcome] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return counts, nil
}

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dubplan/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	status      TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	summary     JSONB
);
CREATE TABLE IF NOT EXISTS script_lines (
	run_id       UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position     INT NOT NULL,
	segment      INT NOT NULL,
	speaker      TEXT NOT NULL,
	timecode     TEXT NOT NULL,
	text         TEXT NOT NULL,
	scene_marker TEXT NOT NULL,
	is_boundary  BOOLEAN NOT NULL,
	method       TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS segments (
	run_id          UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	segment_id      INT NOT NULL,
	speakers        TEXT[] NOT NULL,
	num_speakers    INT NOT NULL,
	lines           INT NOT NULL,
	nominal_seconds DOUBLE PRECISION NOT NULL,
	total_seconds   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, segment_id)
);
CREATE TABLE IF NOT EXISTS schedules (
	run_id           UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INT NOT NULL,
	segment_id       INT NOT NULL,
	speakers         TEXT[] NOT NULL,
	duration_seconds DOUBLE PRECISION NOT NULL,
	start_at         TIMESTAMPTZ,
	end_at           TIMESTAMPTZ,
	status           TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) CreateRun(ctx context.Context, status, fingerprint string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO runs (id, status, fingerprint, started_at) VALUES ($1, $2, $3, NOW()) RETURNING id::text`,
		uuid.NewString(), status, fingerprint).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3`, status, summary, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id::text, status, fingerprint, started_at, finished_at, summary FROM runs ORDER BY started_at DESC LIMIT 1`)
	return scanRun(row, "latest")
}

func (s *Store) GetRun(ctx context.Context, runID string) (models.Run, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return models.Run{}, fmt.Errorf("run %s: %w", runID, models.ErrNotFound)
	}
	row := s.Pool.QueryRow(ctx, `SELECT id::text, status, fingerprint, started_at, finished_at, summary FROM runs WHERE id = $1`, runID)
	return scanRun(row, runID)
}

func scanRun(row pgx.Row, label string) (models.Run, error) {
	var r models.Run
	var summary []byte
	if err := row.Scan(&r.ID, &r.Status, &r.Fingerprint, &r.StartedAt, &r.FinishedAt, &summary); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Run{}, fmt.Errorf("run %s: %w", label, models.ErrNotFound)
		}
		return models.Run{}, err
	}
	r.Summary = summary
	return r, nil
}

// SaveParse stores the classified lines and aggregated segments of a run in one transaction.
func (s *Store) SaveParse(ctx context.Context, runID string, lines []models.ScriptLine, segments []models.Segment) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.InsertLines(ctx, tx, runID, lines); err != nil {
			return fmt.Errorf("insert lines: %w", err)
		}
		if _, err := s.InsertSegments(ctx, tx, runID, segments); err != nil {
			return fmt.Errorf("insert segments: %w", err)
		}
		return nil
	})
}

func (s *Store) InsertLines(ctx context.Context, tx pgx.Tx, runID string, lines []models.ScriptLine) (int64, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return 0, err
	}
	rows := make([][]any, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, []any{id, i, l.Segment, l.Speaker, l.Timecode, l.Text, l.SceneMarker, l.IsSegmentBoundary, l.Method})
	}
	return tx.CopyFrom(ctx, pgx.Identifier{"script_lines"},
		[]string{"run_id", "position", "segment", "speaker", "timecode", "text", "scene_marker", "is_boundary", "method"},
		pgx.CopyFromRows(rows))
}

func (s *Store) InsertSegments(ctx context.Context, tx pgx.Tx, runID string, segments []models.Segment) (int64, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return 0, err
	}
	rows := make([][]any, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []any{id, seg.ID, seg.Speakers, seg.NumSpeakers, seg.Lines, seg.NominalSeconds, seg.TotalSeconds})
	}
	return tx.CopyFrom(ctx, pgx.Identifier{"segments"},
		[]string{"run_id", "segment_id", "speakers", "num_speakers", "lines", "nominal_seconds", "total_seconds"},
		pgx.CopyFromRows(rows))
}

// ReplaceSchedule drops any earlier schedule of the run and stores the new assignments.
func (s *Store) ReplaceSchedule(ctx context.Context, runID string, assignments []models.Assignment) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE run_id = $1`, id); err != nil {
			return err
		}
		rows := make([][]any, 0, len(assignments))
		for i, a := range assignments {
			rows = append(rows, []any{id, i, a.SegmentID, a.Speakers, a.DurationSeconds, a.Start, a.End, a.Status})
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"schedules"},
			[]string{"run_id", "position", "segment_id", "speakers", "duration_seconds", "start_at", "end_at", "status"},
			pgx.CopyFromRows(rows))
		return err
	})
}

func (s *Store) ListLines(ctx context.Context, runID string) ([]models.ScriptLine, error) {
	rows, err := s.Pool.Query(ctx, `SELECT segment, speaker, timecode, text, scene_marker, is_boundary, method FROM script_lines WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScriptLine
	for rows.Next() {
		var l models.ScriptLine
		if err := rows.Scan(&l.Segment, &l.Speaker, &l.Timecode, &l.Text, &l.SceneMarker, &l.IsSegmentBoundary, &l.Method); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListSegments(ctx context.Context, runID string) ([]models.Segment, error) {
	rows, err := s.Pool.Query(ctx, `SELECT segment_id, speakers, num_speakers, lines, nominal_seconds, total_seconds FROM segments WHERE run_id = $1 ORDER BY segment_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Segment
	for rows.Next() {
		var seg models.Segment
		if err := rows.Scan(&seg.ID, &seg.Speakers, &seg.NumSpeakers, &seg.Lines, &seg.NominalSeconds, &seg.TotalSeconds); err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

func (s *Store) ListSchedule(ctx context.Context, runID string) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `SELECT segment_id, speakers, duration_seconds, start_at, end_at, status FROM schedules WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.SegmentID, &a.Speakers, &a.DurationSeconds, &a.Start, &a.End, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

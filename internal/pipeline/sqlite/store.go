package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/mreks/internal/pipeline"
)

// Store implements [pipeline.Store] backed by SQLite.
type Store struct {
	DB *sql.DB
}

var _ pipeline.Store = (*Store)(nil)

// NewStore opens the database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

type stageRecord struct {
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (s *Store) Save(ctx context.Context, e *pipeline.Execution) error {
	records := make([]stageRecord, len(e.Stages))
	for i, st := range e.Stages {
		records[i] = stageRecord{
			Stage:      st.Stage.String(),
			Status:     string(st.Status),
			StartedAt:  st.StartedAt,
			FinishedAt: st.FinishedAt,
			Message:    st.Message,
			Error:      st.Error,
		}
	}
	stages, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO executions (id, pipeline, status, revision, started_at, finished_at, stages)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   revision = excluded.revision,
		   finished_at = excluded.finished_at,
		   stages = excluded.stages`,
		e.ID, e.Pipeline, string(e.Status), e.Revision,
		e.StartedAt.UnixNano(), nullTime(e.FinishedAt), string(stages),
	)
	if err != nil {
		return fmt.Errorf("save execution %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]pipeline.Execution, error) {
	query := `SELECT id, pipeline, status, revision, started_at, finished_at, stages
		FROM executions ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var out []pipeline.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one execution, by full ID or unique ID prefix.
func (s *Store) Get(ctx context.Context, id string) (pipeline.Execution, error) {
	const columns = `SELECT id, pipeline, status, revision, started_at, finished_at, stages FROM executions`

	e, err := scanExecution(s.DB.QueryRowContext(ctx, columns+` WHERE id = ?`, id))
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if id == "" {
		return pipeline.Execution{}, fmt.Errorf("%w: %q", pipeline.ErrExecutionNotFound, id)
	}

	rows, err := s.DB.QueryContext(ctx, columns+` WHERE id LIKE ? ESCAPE '\' LIMIT 2`, likePrefix(id))
	if err != nil {
		return pipeline.Execution{}, fmt.Errorf("get execution %s: %w", id, err)
	}
	defer rows.Close()

	var matches []pipeline.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return pipeline.Execution{}, err
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return pipeline.Execution{}, fmt.Errorf("get execution %s: %w", id, err)
	}

	switch len(matches) {
	case 0:
		return pipeline.Execution{}, fmt.Errorf("%w: %q", pipeline.ErrExecutionNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return pipeline.Execution{}, fmt.Errorf("%w: %q", pipeline.ErrAmbiguousExecution, id)
	}
}

func likePrefix(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (pipeline.Execution, error) {
	var (
		e          pipeline.Execution
		status     string
		startedAt  int64
		finishedAt sql.NullInt64
		stages     string
	)
	if err := row.Scan(&e.ID, &e.Pipeline, &status, &e.Revision, &startedAt, &finishedAt, &stages); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan execution: %w", err)
	}
	e.Status = pipeline.Status(status)
	e.StartedAt = time.Unix(0, startedAt).UTC()
	if finishedAt.Valid {
		e.FinishedAt = time.Unix(0, finishedAt.Int64).UTC()
	}

	var records []stageRecord
	if err := json.Unmarshal([]byte(stages), &records); err != nil {
		return e, fmt.Errorf("unmarshal stages of %s: %w", e.ID, err)
	}
	for _, r := range records {
		kind, err := pipeline.ParseStageKind(r.Stage)
		if err != nil {
			return e, fmt.Errorf("execution %s: %w", e.ID, err)
		}
		e.Stages = append(e.Stages, pipeline.StageResult{
			Stage:      kind,
			Status:     pipeline.StageStatus(r.Status),
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Message:    r.Message,
			Error:      r.Error,
		})
	}
	return e, nil
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

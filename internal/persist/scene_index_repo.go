package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Op names a scene file operation.
type Op string

const (
	OpSave Op = "save"
	OpLoad Op = "load"
)

// SceneEvent is one save or load as recorded in scene_events.
type SceneEvent struct {
	Path      string
	Op        Op
	Roots     int
	Entities  int
	Resources int
	Err       string // empty on success
	CreatedAt time.Time
}

// SceneRow represents a row from the scenes table.
type SceneRow struct {
	Path       string
	Roots      int
	Entities   int
	Resources  int
	SaveCount  int
	LoadCount  int
	LastSaved  *time.Time
	LastLoaded *time.Time
	LastUsed   time.Time
}

// SceneIndexRepo records scene file activity.
type SceneIndexRepo struct {
	db *DB
}

func NewSceneIndexRepo(db *DB) *SceneIndexRepo {
	return &SceneIndexRepo{db: db}
}

// Record appends ev to the event log and, for successful operations,
// refreshes the scene's summary row. Both writes share one transaction.
func (r *SceneIndexRepo) Record(ctx context.Context, ev SceneEvent) error {
	if ev.Op != OpSave && ev.Op != OpLoad {
		return fmt.Errorf("scene index: unknown op %q", ev.Op)
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scene index begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO scene_events (path, op, roots, entities, resources, error)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.Path, string(ev.Op), ev.Roots, ev.Entities, ev.Resources, ev.Err,
	); err != nil {
		return fmt.Errorf("scene event insert: %w", err)
	}

	if ev.Err == "" {
		saved, loaded := 0, 0
		if ev.Op == OpSave {
			saved = 1
		} else {
			loaded = 1
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO scenes (path, roots, entities, resources, save_count, load_count,
			                     last_saved, last_loaded, last_used)
			 VALUES ($1, $2, $3, $4, $5, $6,
			         CASE WHEN $5 = 1 THEN NOW() END,
			         CASE WHEN $6 = 1 THEN NOW() END,
			         NOW())
			 ON CONFLICT (path) DO UPDATE SET
			     roots       = EXCLUDED.roots,
			     entities    = EXCLUDED.entities,
			     resources   = EXCLUDED.resources,
			     save_count  = scenes.save_count + EXCLUDED.save_count,
			     load_count  = scenes.load_count + EXCLUDED.load_count,
			     last_saved  = COALESCE(EXCLUDED.last_saved, scenes.last_saved),
			     last_loaded = COALESCE(EXCLUDED.last_loaded, scenes.last_loaded),
			     last_used   = NOW()`,
			ev.Path, ev.Roots, ev.Entities, ev.Resources, saved, loaded,
		); err != nil {
			return fmt.Errorf("scene upsert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Load returns the summary row for path, or nil if the scene is unknown.
func (r *SceneIndexRepo) Load(ctx context.Context, path string) (*SceneRow, error) {
	row := &SceneRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT path, roots, entities, resources, save_count, load_count,
		        last_saved, last_loaded, last_used
		 FROM scenes WHERE path = $1`, path,
	).Scan(
		&row.Path, &row.Roots, &row.Entities, &row.Resources, &row.SaveCount, &row.LoadCount,
		&row.LastSaved, &row.LastLoaded, &row.LastUsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Recent returns up to limit scenes, most recently used first.
func (r *SceneIndexRepo) Recent(ctx context.Context, limit int) ([]SceneRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT path, roots, entities, resources, save_count, load_count,
		        last_saved, last_loaded, last_used
		 FROM scenes ORDER BY last_used DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SceneRow
	for rows.Next() {
		var s SceneRow
		if err := rows.Scan(
			&s.Path, &s.Roots, &s.Entities, &s.Resources, &s.SaveCount, &s.LoadCount,
			&s.LastSaved, &s.LastLoaded, &s.LastUsed,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Events returns the logged operations for path, newest first.
func (r *SceneIndexRepo) Events(ctx context.Context, path string, limit int) ([]SceneEvent, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT path, op, roots, entities, resources, error, created_at
		 FROM scene_events WHERE path = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`, path, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SceneEvent
	for rows.Next() {
		var ev SceneEvent
		var op string
		if err := rows.Scan(&ev.Path, &op, &ev.Roots, &ev.Entities, &ev.Resources, &ev.Err, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Op = Op(op)
		out = append(out, ev)
	}
	return out, rows.Err()
}

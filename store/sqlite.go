/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Seednode/petitbac/game"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	updated_at INTEGER NOT NULL,
	data       TEXT NOT NULL
);
`

// SQLite persists game documents as JSON rows, one per game code.
//
// Change notifications cover writers in this process; every write flows
// through one server, so that is the whole write set. A multi-writer
// deployment would need a polling or bus layer behind the same Store
// interface.
type SQLite struct {
	db    *sql.DB
	mu    sync.Mutex // serializes read-modify-write cycles
	watch *watchTable
}

// OpenSQLite opens (creating if needed) the games database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure games table: %w", err)
	}

	return &SQLite{
		db:    db,
		watch: newWatchTable(),
	}, nil
}

func (s *SQLite) get(ctx context.Context, id string) (*game.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read game %s: %w", id, err)
	}

	doc := &game.Document{}
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}

	return doc, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*game.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, id)
}

func (s *SQLite) Put(ctx context.Context, doc *game.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := doc.Clone()
	stored.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", doc.ID, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, updated_at, data) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		stored.ID, stored.UpdatedAt.UnixMilli(), string(data),
	)
	if err != nil {
		return fmt.Errorf("write game %s: %w", doc.ID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return ErrExists
	}

	s.watch.notify(stored.ID, Event{Game: stored})

	return nil
}

func (s *SQLite) Update(ctx context.Context, id string, mutate func(*game.Document) error) (*game.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE games SET updated_at = ?, data = ? WHERE id = ?`,
		doc.UpdatedAt.UnixMilli(), string(data), id,
	); err != nil {
		return nil, fmt.Errorf("write game %s: %w", id, err)
	}

	s.watch.notify(id, Event{Game: doc.Clone()})

	return doc, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	s.watch.gone(id)

	return nil
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM games`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *SQLite) Watch(id string) (<-chan Event, func()) {
	return s.watch.watch(id)
}

func (s *SQLite) Close() error {
	s.watch.closeAll()
	return s.db.Close()
}

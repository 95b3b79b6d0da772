package state

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	stateTableSchema = `CREATE TABLE IF NOT EXISTS probe_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    online_at INTEGER NULL, -- unix seconds, NULL until the server is first seen online
    players_at INTEGER NULL -- unix seconds, NULL until players are first seen
	);`

	stateSelect = `SELECT online_at, players_at FROM probe_state WHERE id = 1;`

	stateUpsert = `INSERT INTO probe_state (id, online_at, players_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET online_at = excluded.online_at, players_at = excluded.players_at;`
)

// SQLiteStore keeps the record as the single row of a SQLite table.
type SQLiteStore struct {
	path string
	log  *zap.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore returns a store backed by the database file at path.
// The database and table are created on first use.
func NewSQLiteStore(path string, opts ...StoreOption) *SQLiteStore {
	s := newSettings(opts)
	return &SQLiteStore{path: path, log: s.log}
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) open(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := sqlite.OpenConn(s.path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return nil, errors.Wrapf(err, "open state database %s", s.path)
	}
	conn.SetInterrupt(ctx.Done())

	if err := sqlitex.ExecuteTransient(conn, stateTableSchema, nil); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "create state table in %s", s.path)
	}

	return conn, nil
}

// Read fetches the row and reports why it could not.
func (s *SQLiteStore) Read(ctx context.Context) (State, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return State{}, err
	}
	defer conn.Close()

	var st State
	err = sqlitex.Execute(conn, stateSelect, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			st.OnlineAt = columnTimestamp(stmt, 0)
			st.PlayersAt = columnTimestamp(stmt, 1)
			return nil
		},
	})
	if err != nil {
		return State{}, errors.Wrapf(err, "query state from %s", s.path)
	}

	return st, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) State {
	st, err := s.Read(ctx)
	if err != nil {
		s.log.Debug("state_load_fallback", zap.String("path", s.path), zap.Error(err))
		return State{}
	}
	return st
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", s.path)
	}

	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = sqlitex.Execute(conn, stateUpsert, &sqlitex.ExecOptions{
		Args: []any{unixOrNull(st.OnlineAt), unixOrNull(st.PlayersAt)},
	})
	if err != nil {
		return errors.Wrapf(err, "save state to %s", s.path)
	}

	return nil
}

func columnTimestamp(stmt *sqlite.Stmt, col int) Timestamp {
	if stmt.ColumnType(col) == sqlite.TypeNull {
		return Timestamp{}
	}
	return At(time.Unix(stmt.ColumnInt64(col), 0).UTC())
}

func unixOrNull(t Timestamp) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Unix()
}

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/m-mizutani/goerr/v2"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite database behind cadence. Repositories share its
// single connection.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// pragmas tune SQLite for one local user. WAL lets the CLI read while the
// TUI writes.
var pragmas = [][2]string{
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"synchronous", "NORMAL"},
}

// Open connects to dsn, applies pragmas and brings the tables up to date.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withTimeFormat(dsn))
	if err != nil {
		return nil, goerr.Wrap(err, "open database", goerr.V("dsn", dsn))
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db)}
	if err := s.prepare(context.Background()); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "prepare database", goerr.V("dsn", dsn))
	}
	return s, nil
}

func (s *Store) prepare(ctx context.Context) error {
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, "PRAGMA "+p[0]+" = "+p[1]); err != nil {
			return goerr.Wrap(err, "exec pragma", goerr.V("pragma", p[0]))
		}
	}
	if err := migrate(ctx, s.drv); err != nil {
		return err
	}
	seq, err := newSequenceCounter(s.db)
	if err != nil {
		return err
	}
	s.seq = seq
	return nil
}

// DB is the raw handle, for queries the builder cannot express.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) ItemRepo() *ItemRepo { return &ItemRepo{db: s.db, seq: s.seq} }

// CallRepo is the LLM call log.
func (s *Store) CallRepo() *CallRepo { return &CallRepo{db: s.db, seq: s.seq} }

// withTimeFormat makes the driver write times in a format it parses back
// losslessly.
func withTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

// DefaultDBPath is $CADENCE_DB if set, else cadence/cadence.db under the
// XDG data directory. The parent directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("CADENCE_DB")
	if p == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", goerr.Wrap(err, "resolve home dir")
			}
			base = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(base, "cadence", "cadence.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "create database directory", goerr.V("dir", dir))
	}
	return nil
}

// Package store persists chunks in SQLite. Each chunk is kept as the CBOR
// encoding of its dist.Envelope, keyed by name.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/loxbc/pkg/bytecode"
	"github.com/chazu/loxbc/pkg/dist"
)

// ErrChunkNotFound indicates the requested chunk doesn't exist
var ErrChunkNotFound = errors.New("chunk not found")

var log = commonlog.GetLogger("loxbc.store")

// Entry describes a stored chunk without decoding it.
type Entry struct {
	Name string
	ID   string
	Hash [32]byte
}

// Store handles SQLite storage for chunks
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the chunk database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		hash BLOB NOT NULL,
		envelope BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened chunk store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save seals c under name and stores it, replacing any chunk of the same
// name. Returns the stored envelope.
func (s *Store) Save(name string, c *bytecode.Chunk) (*dist.Envelope, error) {
	env, err := dist.Seal(name, c)
	if err != nil {
		return nil, err
	}
	if err := s.Put(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Put stores an envelope received from elsewhere. The envelope is verified
// and decoded first so the store only ever holds valid chunks.
func (s *Store) Put(env *dist.Envelope) error {
	c, err := env.Open()
	if err != nil {
		return fmt.Errorf("rejecting chunk %s: %w", env.Name, err)
	}
	c.Free()

	data, err := dist.MarshalEnvelope(env)
	if err != nil {
		return fmt.Errorf("encoding chunk %s: %w", env.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO chunks (name, id, hash, envelope) VALUES (?, ?, ?, ?)",
		env.Name, env.ID.String(), env.Hash[:], data,
	)
	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	log.Debugf("saved chunk %s (%d bytes of code)", env.Name, len(env.Body))
	return nil
}

// Envelope retrieves the stored envelope for name.
func (s *Store) Envelope(name string) (*dist.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT envelope FROM chunks WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrChunkNotFound, name)
		}
		return nil, fmt.Errorf("querying chunk: %w", err)
	}
	return dist.UnmarshalEnvelope(data)
}

// Load retrieves and decodes the chunk stored under name. The caller owns
// the returned chunk and should Free it.
func (s *Store) Load(name string) (*bytecode.Chunk, error) {
	env, err := s.Envelope(name)
	if err != nil {
		return nil, err
	}
	return env.Open()
}

// List returns the stored chunks ordered by name.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, id, hash FROM chunks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var hash []byte
		if err := rows.Scan(&e.Name, &e.ID, &hash); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		copy(e.Hash[:], hash)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the chunk stored under name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM chunks WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting chunk: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrChunkNotFound, name)
	}
	return nil
}

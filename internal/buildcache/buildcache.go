// Package buildcache implements a content-addressed cache of generated
// assembly text, keyed by a SHA-256 digest of the source and a version
// tag. Grounded on the teacher's internal/evaluator/builtins_sql.go: the
// blank import of modernc.org/sqlite registering the "sqlite" database/sql
// driver, and database/sql as the only query surface — this package never
// imports the driver's own types directly.
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache wraps a single sqlite-backed table mapping a source digest to its
// previously generated assembly text.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and ensures
// the cache table exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("buildcache: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS assembly_cache (
	digest TEXT PRIMARY KEY,
	version TEXT NOT NULL,
	asm TEXT NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key returns the content-addressed digest for a (source, version) pair,
// the compiler's binary version tag guarding against stale entries
// surviving a codegen change.
func Key(source, version string) string {
	sum := sha256.Sum256([]byte(version + "\x00" + source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached assembly for digest, if any.
func (c *Cache) Lookup(digest string) (asm string, ok bool, err error) {
	row := c.db.QueryRow(`SELECT asm FROM assembly_cache WHERE digest = ?`, digest)
	if err := row.Scan(&asm); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("buildcache: lookup: %w", err)
	}
	return asm, true, nil
}

// Store saves asm under digest, overwriting any prior entry for the same
// key (a version bump changes the digest, so this only ever overwrites a
// byte-identical recompilation).
func (c *Cache) Store(digest, version, asm string) error {
	_, err := c.db.Exec(
		`INSERT INTO assembly_cache (digest, version, asm) VALUES (?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET version = excluded.version, asm = excluded.asm`,
		digest, version, asm)
	if err != nil {
		return fmt.Errorf("buildcache: store: %w", err)
	}
	return nil
}

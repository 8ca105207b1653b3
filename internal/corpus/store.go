// Package corpus is the persistent, partitioned, deduplicated destination
// tree for canonicalized game records. Entries are keyed by
// (ruleset, outcome, content hash); writes with the same key land on the same
// path, so replaying an ingest is harmless.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"corpus5d/internal/record"
)

// HashMoves computes the dedup key for canonical move text: a sha256 hex
// digest over the text exactly as the converter returned it. Header metadata
// never contributes, so records differing only in timestamps or engine tags
// collapse to one entry.
func HashMoves(moves string) string {
	sum := sha256.Sum256([]byte(moves))
	return hex.EncodeToString(sum[:])
}

// Entry is a canonicalized record ready to be materialized in the corpus.
type Entry struct {
	Key     record.PathKey
	Headers []string // surviving header lines, implied tags already stripped
	Moves   string   // canonical move text
	Hash    string   // HashMoves(Moves)
}

// NewEntry builds an Entry from a stripped record and its path key.
func NewEntry(key record.PathKey, rec record.Record) Entry {
	return Entry{
		Key:     key,
		Headers: rec.Headers,
		Moves:   rec.Moves,
		Hash:    HashMoves(rec.Moves),
	}
}

// Store writes entries under a corpus root. Partition returns a Store rooted
// one level deeper for the archive-derived checkmate/nonmate trees.
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir. The directory itself is created
// lazily on first write.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Partition returns a Store for a named top-level partition (checkmate,
// nonmate) inside this store.
func (s *Store) Partition(name string) *Store {
	return &Store{root: filepath.Join(s.root, name)}
}

// EntryPath is the deterministic destination for an entry:
// <root>/<ruleset>/<outcome>/<hash>-<sequence>.<ext>.
func (s *Store) EntryPath(e Entry) string {
	name := fmt.Sprintf("%s-%d%s", e.Hash, e.Key.Seq, e.Key.Ext)
	return filepath.Join(s.root, e.Key.Ruleset, string(e.Key.Outcome), name)
}

// Write materializes an entry, creating ruleset/outcome directories as
// needed. At most one entry exists per (ruleset, outcome, hash): if any
// entry with the same hash is already present the write is a no-op and the
// existing path is returned, whatever sequence it was first committed under.
// New writes go through a temp file and rename so a crash never leaves a
// half-written entry.
func (s *Store) Write(e Entry) (string, error) {
	path := s.EntryPath(e)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create corpus dir %s: %w", dir, err)
	}

	if existing, err := filepath.Glob(filepath.Join(dir, e.Hash+"-*"+e.Key.Ext)); err == nil && len(existing) > 0 {
		return existing[0], nil
	}

	rec := record.Record{Headers: e.Headers, Moves: e.Moves}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return "", fmt.Errorf("create corpus temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(rec.Render()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write corpus entry %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close corpus entry %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("commit corpus entry %s: %w", path, err)
	}
	return path, nil
}

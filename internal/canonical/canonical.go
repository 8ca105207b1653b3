// Package canonical turns a raw game record into a committed corpus entry:
// split at the metadata/move boundary, normalize the move text through the
// external converter, strip ruleset boilerplate, hash, write.
package canonical

import (
	"context"
	"errors"
	"fmt"

	"corpus5d/internal/corpus"
	"corpus5d/internal/record"
)

// ErrEmptyRecord reports a record whose move-text block holds no moves.
// Not a failure: an empty record is an expected state for incomplete or seed
// games and simply yields no corpus entry.
var ErrEmptyRecord = errors.New("record has no move text")

// MoveConverter is the external notation converter boundary.
type MoveConverter interface {
	Canonical(ctx context.Context, path string) (string, error)
}

// Canonicalizer drives records through convert + hash + store. Committing the
// same record twice lands on the same corpus path with identical bytes, so
// at-least-once delivery upstream is safe.
type Canonicalizer struct {
	conv  MoveConverter
	store *corpus.Store
}

// New returns a Canonicalizer writing into store.
func New(conv MoveConverter, store *corpus.Store) *Canonicalizer {
	return &Canonicalizer{conv: conv, store: store}
}

// Commit canonicalizes the record at path and writes it to the corpus,
// returning the corpus path. ErrEmptyRecord means "nothing to commit": the
// caller may safely discard the source. Any other error leaves the corpus
// untouched for that record.
func (c *Canonicalizer) Commit(ctx context.Context, path string, key record.PathKey) (string, error) {
	data, err := record.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read record %s: %w", path, err)
	}

	rec := record.Parse(data)
	if rec.Empty() {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyRecord)
	}

	moves, err := c.conv.Canonical(ctx, path)
	if err != nil {
		return "", err
	}

	stripped := record.Record{Headers: rec.Headers, Moves: moves}.StripImplied()
	entry := corpus.NewEntry(key, stripped)

	dest, err := c.store.Write(entry)
	if err != nil {
		return "", err
	}
	return dest, nil
}

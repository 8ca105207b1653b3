package record

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrPathFormat reports a staging or archive path that does not match the
// <root>/<ruleset>/<outcome>/<sequence>.<ext> template. It is a per-record
// error, never fatal to a run.
var ErrPathFormat = errors.New("path does not match <ruleset>/<outcome>/<sequence>.<ext>")

// PathKey is the identity a raw record carries in its storage path.
// Ruleset and Outcome partition the corpus; Seq is retained for traceability
// only and is never part of the dedup identity. Ext is the record's file
// extension (with leading dot), carried through to the corpus entry unchanged.
type PathKey struct {
	Ruleset string
	Outcome Outcome
	Seq     uint64
	Ext     string
}

// ParsePathKey derives a PathKey from a record path relative to root.
// The path must be exactly <root>/<ruleset>/<outcome>/<sequence>.<ext>;
// anything else returns an error wrapping ErrPathFormat.
func ParsePathKey(root, path string) (PathKey, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return PathKey{}, fmt.Errorf("%w: %q not under %q", ErrPathFormat, path, root)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return PathKey{}, fmt.Errorf("%w: %q", ErrPathFormat, rel)
	}

	outcome, ok := ParseOutcome(parts[1])
	if !ok {
		return PathKey{}, fmt.Errorf("%w: unknown outcome %q in %q", ErrPathFormat, parts[1], rel)
	}

	name := parts[2]
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" || stem == "" {
		return PathKey{}, fmt.Errorf("%w: %q", ErrPathFormat, rel)
	}
	seq, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return PathKey{}, fmt.Errorf("%w: sequence %q in %q", ErrPathFormat, stem, rel)
	}

	return PathKey{
		Ruleset: parts[0],
		Outcome: outcome,
		Seq:     seq,
		Ext:     ext,
	}, nil
}

// StagingPath is the inverse of ParsePathKey: the location a record with this
// key occupies under a staging root.
func (k PathKey) StagingPath(root string) string {
	return filepath.Join(root, k.Ruleset, string(k.Outcome), fmt.Sprintf("%d%s", k.Seq, k.Ext))
}

// ParseArchiveKey derives outcome, sequence and extension from an archive
// path. Archive dumps are organized by outcome only
// (<root>/<outcome>/<sequence>.<ext>); the ruleset lives in the record's
// header tags instead of the path. A trailing .zst compression suffix is not
// part of the logical extension.
func ParseArchiveKey(root, path string) (Outcome, uint64, string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", 0, "", fmt.Errorf("%w: %q not under %q", ErrPathFormat, path, root)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return "", 0, "", fmt.Errorf("%w: %q", ErrPathFormat, rel)
	}

	outcome, ok := ParseOutcome(parts[0])
	if !ok {
		return "", 0, "", fmt.Errorf("%w: unknown outcome %q in %q", ErrPathFormat, parts[0], rel)
	}

	name := strings.TrimSuffix(parts[1], ".zst")
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" || stem == "" {
		return "", 0, "", fmt.Errorf("%w: %q", ErrPathFormat, rel)
	}
	seq, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return "", 0, "", fmt.Errorf("%w: sequence %q in %q", ErrPathFormat, stem, rel)
	}

	return outcome, seq, ext, nil
}

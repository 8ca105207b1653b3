// Package record holds the path codec and raw-record parsing shared by the
// harvester and the archive ingestor. A raw record is a text file with a block
// of bracketed header tags followed by the game's move text; everything the
// pipeline knows about a record beyond that boundary comes from its path.
package record

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Record is a raw game record split at the metadata/move boundary.
// Headers keeps the tag lines in their original order; Moves is the move-text
// block exactly as read, including interior whitespace.
type Record struct {
	Headers []string
	Moves   string
}

// Parse splits raw record bytes into header and move-text blocks.
// A header line is a bracketed tag pair (`[Tag "Value"]`); the move text is
// everything after the last leading header line.
func Parse(data []byte) Record {
	lines := strings.Split(string(data), "\n")

	var headers []string
	i := 0
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !isHeaderLine(trimmed) {
			break
		}
		headers = append(headers, trimmed)
	}

	return Record{
		Headers: headers,
		Moves:   strings.Join(lines[i:], "\n"),
	}
}

func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

// Empty reports whether the move-text block carries no moves at all.
func (r Record) Empty() bool {
	return strings.TrimSpace(r.Moves) == ""
}

// Tag returns the value of the named header tag, if present.
func (r Record) Tag(name string) (string, bool) {
	prefix := "[" + name + " \""
	for _, h := range r.Headers {
		if strings.HasPrefix(h, prefix) && strings.HasSuffix(h, "\"]") {
			return h[len(prefix) : len(h)-2], true
		}
	}
	return "", false
}

// RulesetTag returns the record's board-variant tag, normalized to the
// corpus directory form (lowercase, spaces and dashes collapsed to
// underscores). "Standard - Princess" becomes "standard_princess".
func (r Record) RulesetTag() (string, bool) {
	v, ok := r.Tag("Board")
	if !ok {
		return "", false
	}
	return NormalizeRuleset(v), true
}

// NormalizeRuleset maps a Board tag value to a corpus partition name.
func NormalizeRuleset(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

// Tags whose content is fully implied by the ruleset partition the entry
// lands in. Keeping them per entry would duplicate the PathKey.
var impliedTags = []string{"Board", "Mode"}

// StripImplied returns a copy of the record without the header tags that the
// corpus path already encodes.
func (r Record) StripImplied() Record {
	var kept []string
	for _, h := range r.Headers {
		implied := false
		for _, tag := range impliedTags {
			if strings.HasPrefix(h, "["+tag+" ") {
				implied = true
				break
			}
		}
		if !implied {
			kept = append(kept, h)
		}
	}
	return Record{Headers: kept, Moves: r.Moves}
}

// TruncateMoves drops the last n lines of the move-text block, yielding the
// pre-terminal form of a finished game. Trailing blank lines are not counted.
// Reports false when fewer than n+1 move lines remain, in which case the
// truncation would leave no usable record.
func (r Record) TruncateMoves(n int) (Record, bool) {
	lines := strings.Split(r.Moves, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end <= n {
		return Record{}, false
	}
	return Record{
		Headers: r.Headers,
		Moves:   strings.Join(lines[:end-n], "\n") + "\n",
	}, true
}

// Render reassembles a record into its on-disk form: header lines, a blank
// separator, then the move text.
func (r Record) Render() []byte {
	var b strings.Builder
	for _, h := range r.Headers {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	if len(r.Headers) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(r.Moves)
	if !strings.HasSuffix(r.Moves, "\n") {
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// ReadFile reads a raw record, transparently decompressing .zst files.
// Archive dumps arrive zstd-compressed; staging records never do.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return io.ReadAll(f)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader for %s: %w", path, err)
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

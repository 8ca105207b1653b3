package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const sampleRecord = `[Board "Standard"]
[Mode "5D"]
[Date "2025.11.02"]

1. (0T1)e2e3 / (0T1)e7e6
2. (0T2)d2d4 / (0T2)d7d5
`

func TestParse(t *testing.T) {
	rec := Parse([]byte(sampleRecord))

	wantHeaders := []string{`[Board "Standard"]`, `[Mode "5D"]`, `[Date "2025.11.02"]`}
	if len(rec.Headers) != len(wantHeaders) {
		t.Fatalf("headers = %v, want %v", rec.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if rec.Headers[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rec.Headers[i], h)
		}
	}
	if !strings.Contains(rec.Moves, "1. (0T1)e2e3") {
		t.Errorf("move text missing first move: %q", rec.Moves)
	}
	if strings.Contains(rec.Moves, "[Board") {
		t.Errorf("move text contains header line: %q", rec.Moves)
	}
}

func TestParse_NoHeaders(t *testing.T) {
	rec := Parse([]byte("1. (0T1)e2e3 / (0T1)e7e6\n"))
	if len(rec.Headers) != 0 {
		t.Errorf("headers = %v, want none", rec.Headers)
	}
	if rec.Empty() {
		t.Error("record with moves reported empty")
	}
}

func TestRecord_Empty(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"moves present", sampleRecord, false},
		{"headers only", "[Board \"Standard\"]\n[Mode \"5D\"]\n", true},
		{"whitespace moves", "[Board \"Standard\"]\n\n   \n\t\n", true},
		{"empty file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse([]byte(tt.data)).Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_Tag(t *testing.T) {
	rec := Parse([]byte(sampleRecord))

	if v, ok := rec.Tag("Board"); !ok || v != "Standard" {
		t.Errorf("Tag(Board) = (%q, %v), want (Standard, true)", v, ok)
	}
	if v, ok := rec.Tag("Date"); !ok || v != "2025.11.02" {
		t.Errorf("Tag(Date) = (%q, %v), want (2025.11.02, true)", v, ok)
	}
	if _, ok := rec.Tag("Result"); ok {
		t.Error("Tag(Result) found, want absent")
	}
}

func TestRecord_RulesetTag(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"Standard", "standard"},
		{"Standard - Princess", "standard_princess"},
		{"Defended Pawn", "defended_pawn"},
		{"Standard - Half Reflected", "standard_half_reflected"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			rec := Parse([]byte("[Board \"" + tt.tag + "\"]\n\n1. e4\n"))
			got, ok := rec.RulesetTag()
			if !ok || got != tt.want {
				t.Errorf("RulesetTag() = (%q, %v), want (%q, true)", got, ok, tt.want)
			}
		})
	}

	rec := Parse([]byte("1. e4\n"))
	if _, ok := rec.RulesetTag(); ok {
		t.Error("RulesetTag() on record without Board tag succeeded")
	}
}

func TestRecord_StripImplied(t *testing.T) {
	rec := Parse([]byte(sampleRecord)).StripImplied()

	if len(rec.Headers) != 1 || rec.Headers[0] != `[Date "2025.11.02"]` {
		t.Errorf("surviving headers = %v, want only the Date tag", rec.Headers)
	}
	if rec.Moves != Parse([]byte(sampleRecord)).Moves {
		t.Error("StripImplied changed the move text")
	}
}

func TestRecord_TruncateMoves(t *testing.T) {
	moves := []string{
		"1. (0T1)e2e3 / (0T1)e7e6",
		"2. (0T2)d2d4 / (0T2)d7d5",
		"3. (0T3)Bf1b5 / (0T3)Ng8f6",
		"4. (0T4)Qd1f3 / (0T4)a7a6",
		"5. (0T5)Qf3f7",
	}
	rec := Record{Moves: strings.Join(moves, "\n") + "\n"}

	got, ok := rec.TruncateMoves(4)
	if !ok {
		t.Fatal("TruncateMoves(4) refused a 5-line record")
	}
	if want := moves[0] + "\n"; got.Moves != want {
		t.Errorf("truncated moves = %q, want %q", got.Moves, want)
	}

	// The terminal ply must not survive truncation.
	if strings.Contains(got.Moves, "Qf3f7") {
		t.Error("truncation left the mating move in place")
	}

	if _, ok := rec.TruncateMoves(5); ok {
		t.Error("TruncateMoves(5) accepted a record it would empty")
	}

	// Trailing blank lines don't count as move lines.
	padded := Record{Moves: strings.Join(moves, "\n") + "\n\n\n"}
	got, ok = padded.TruncateMoves(4)
	if !ok || got.Moves != moves[0]+"\n" {
		t.Errorf("padded truncation = (%q, %v), want (%q, true)", got.Moves, ok, moves[0]+"\n")
	}
}

func TestRecord_Render(t *testing.T) {
	rec := Record{
		Headers: []string{`[Date "2025.11.02"]`},
		Moves:   "1. e4 e5",
	}
	want := "[Date \"2025.11.02\"]\n\n1. e4 e5\n"
	if got := string(rec.Render()); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	// Parse(Render(r)) is stable.
	again := Parse(rec.Render())
	if len(again.Headers) != 1 || again.Headers[0] != rec.Headers[0] {
		t.Errorf("re-parsed headers = %v, want %v", again.Headers, rec.Headers)
	}
	if strings.TrimSpace(again.Moves) != rec.Moves {
		t.Errorf("re-parsed moves = %q, want %q", again.Moves, rec.Moves)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "17.c5d")
	if err := os.WriteFile(plain, []byte(sampleRecord), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile(plain) error: %v", err)
	}
	if string(got) != sampleRecord {
		t.Errorf("ReadFile(plain) = %q, want %q", got, sampleRecord)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := filepath.Join(dir, "17.c5d.zst")
	if err := os.WriteFile(compressed, enc.EncodeAll([]byte(sampleRecord), nil), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = ReadFile(compressed)
	if err != nil {
		t.Fatalf("ReadFile(zst) error: %v", err)
	}
	if string(got) != sampleRecord {
		t.Errorf("ReadFile(zst) = %q, want %q", got, sampleRecord)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.c5d")); err == nil {
		t.Error("ReadFile(missing) succeeded, want error")
	}
}

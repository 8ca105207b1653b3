package convert

import (
	"context"
	"errors"
	"testing"
)

type fakeRunner struct {
	out      []byte
	err      error
	gotName  string
	gotArgs  []string
	runCount int
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.runCount++
	f.gotName = name
	f.gotArgs = args
	return f.out, f.err
}

func TestConverter_Canonical(t *testing.T) {
	runner := &fakeRunner{out: []byte("1. (0T1)e2e3 / (0T1)e7e6\n")}
	c := New("5dconv", "5dpgn")
	c.run = runner

	got, err := c.Canonical(context.Background(), "/staging/standard/white/17.c5d")
	if err != nil {
		t.Fatalf("Canonical error: %v", err)
	}
	if got != string(runner.out) {
		t.Errorf("Canonical = %q, want converter stdout verbatim %q", got, runner.out)
	}

	if runner.gotName != "5dconv" {
		t.Errorf("invoked %q, want 5dconv", runner.gotName)
	}
	wantArgs := []string{"-t", "5dpgn", "/staging/standard/white/17.c5d"}
	if len(runner.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", runner.gotArgs, wantArgs)
	}
	for i := range wantArgs {
		if runner.gotArgs[i] != wantArgs[i] {
			t.Errorf("args[%d] = %q, want %q", i, runner.gotArgs[i], wantArgs[i])
		}
	}
}

func TestConverter_CanonicalFailure(t *testing.T) {
	c := New("5dconv", "5dpgn")
	c.run = &fakeRunner{err: errors.New("exit status 1: malformed record")}

	if _, err := c.Canonical(context.Background(), "bad.c5d"); err == nil {
		t.Fatal("Canonical on converter failure succeeded, want error")
	}
}

func TestConverter_CanonicalEmptyOutput(t *testing.T) {
	c := New("5dconv", "5dpgn")
	c.run = &fakeRunner{out: []byte("  \n")}

	_, err := c.Canonical(context.Background(), "empty.c5d")
	if !errors.Is(err, ErrNoOutput) {
		t.Fatalf("error = %v, want ErrNoOutput", err)
	}
}

func TestConverter_MissingBinary(t *testing.T) {
	c := New("/nonexistent/5dconv", "5dpgn")
	if _, err := c.Canonical(context.Background(), "x.c5d"); err == nil {
		t.Fatal("Canonical with missing binary succeeded, want error")
	}
}

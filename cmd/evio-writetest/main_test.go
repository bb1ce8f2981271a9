package main

import (
	"path/filepath"
	"testing"
)

func TestRunWritesRequestedEvents(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.evio")

	code := run([]string{"-o", out, "-n", "5", "-b", "64"})
	if code != exitOK {
		t.Fatalf("run() = %d, want %d", code, exitOK)
	}
}

func TestRunRejectsMissingOutput(t *testing.T) {
	code := run([]string{"-n", "1", "-b", "64"})
	if code != exitArgError {
		t.Fatalf("run() = %d, want %d", code, exitArgError)
	}
}

func TestRunRejectsMissingSizeAndRepeat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.evio")

	code := run([]string{"-o", out, "-b", "64"})
	if code != exitArgError {
		t.Fatalf("run() = %d, want %d", code, exitArgError)
	}
}

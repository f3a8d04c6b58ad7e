package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"unhex/internal/convert"
)

func open(t *testing.T) {
	t.Helper()
	Open(Config{File: filepath.Join(t.TempDir(), "sub", "unhex.db")})
	t.Cleanup(func() {
		if err := Close(); err != nil {
			t.Error(err)
		}
	})
}

func TestRuns(t *testing.T) {
	open(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var want []Run
	for i := range 5 {
		run := Run{
			Started:  start.Add(time.Duration(i) * time.Minute),
			Duration: time.Duration(i) * time.Millisecond,
			Input:    "in.pot",
			Output:   "out.txt",
			Stats:    convert.Stats{Lines: i, Wrapped: i},
		}
		id, err := AddRun(run)
		if err != nil {
			t.Fatal(err)
		}
		if have, want := id, uint64(i+1); have != want {
			t.Fatalf("id %d != %d", have, want)
		}
		run.ID = id
		want = append(want, run)
	}

	var have []Run
	for run := range Runs() {
		have = append(have, run)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("Runs mismatch (-want +have):\n%s", diff)
	}

	last, err := LastRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Run{want[4], want[3]}, last); diff != "" {
		t.Fatalf("LastRuns mismatch (-want +have):\n%s", diff)
	}
}

func TestRunsStop(t *testing.T) {
	open(t)

	for range 3 {
		if _, err := AddRun(Run{Input: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	n := 0
	for range Runs() {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iterated %d runs after break", n)
	}
}

func TestNotOpened(t *testing.T) {
	_, err := AddRun(Run{})
	if err == nil {
		t.Fatal("AddRun on closed db returned nil error")
	}
}

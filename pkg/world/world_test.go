package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/vigil/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestCapture(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n// TODO fix startup\n")
	writeFile(t, root, "lib/util.go", "package lib\n// FIXME leaky buffer\n// TODO add tests\n")
	writeFile(t, root, "README.md", "TODO markers in docs do not count\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "node_modules/dep/index.js", "// TODO ignored\n")

	c, err := NewCapturer(root)
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	model, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// .git and node_modules are skipped entirely.
	if model.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", model.FileCount)
	}
	if model.DirCount != 1 {
		t.Errorf("DirCount = %d, want 1 (lib)", model.DirCount)
	}
	if model.OpenBugs != 3 {
		t.Errorf("OpenBugs = %d, want 3 (markers in .go files only)", model.OpenBugs)
	}
	want := 1.0 - 3*healthPenaltyPerBug
	if model.HealthScore != want {
		t.Errorf("HealthScore = %v, want %v", model.HealthScore, want)
	}
}

func TestCaptureScanCap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "// TODO one\n")
	writeFile(t, root, "b.go", "// TODO two\n")
	writeFile(t, root, "c.go", "// TODO three\n")

	c, err := NewCapturer(root, WithMaxScanFiles(2))
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	model, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if model.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3 (cap limits scanning, not counting)", model.FileCount)
	}
	if model.OpenBugs != 2 {
		t.Errorf("OpenBugs = %d, want 2 (third file not scanned)", model.OpenBugs)
	}
	if model.Notes == "" {
		t.Error("capped scan should be noted in the snapshot")
	}
}

func TestCaptureCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	c, err := NewCapturer(root)
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Capture(ctx); err == nil {
		t.Error("Capture should fail on canceled context")
	}
}

func TestNewCapturerRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")

	if _, err := NewCapturer(filepath.Join(root, "file.txt")); err == nil {
		t.Error("file root should be rejected")
	}
	if _, err := NewCapturer(filepath.Join(root, "missing")); err == nil {
		t.Error("missing root should be rejected")
	}
}

func TestSchedule(t *testing.T) {
	s := NewSchedule()

	if _, err := s.Add("", time.Minute); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := s.Add("lint", 0); err == nil {
		t.Error("non-positive interval should be rejected")
	}

	entry, err := s.Add("lint", time.Hour)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if due := s.Due(time.Now()); len(due) != 0 {
		t.Errorf("fresh entry should not be due, got %+v", due)
	}

	later := time.Now().Add(2 * time.Hour)
	due := s.Due(later)
	if len(due) != 1 || due[0].Name != "lint" {
		t.Fatalf("Due = %+v, want lint", due)
	}

	if err := s.MarkRun(entry.ID, later); err != nil {
		t.Fatalf("MarkRun failed: %v", err)
	}
	if due := s.Due(later); len(due) != 0 {
		t.Errorf("entry just run should not be due")
	}
	if err := s.MarkRun("no-such-id", later); err == nil {
		t.Error("unknown entry should error")
	}
}

func TestTriggers(t *testing.T) {
	e := NewEvaluator()

	firedNames := func(results []types.TriggerResult) map[string]string {
		out := make(map[string]string)
		for _, r := range results {
			if r.Fired {
				out[r.Name] = r.Reason
			}
		}
		return out
	}

	// Quiet delta fires nothing.
	if fired := firedNames(e.Check(types.ProjectDelta{FilesAdded: 1})); len(fired) != 0 {
		t.Errorf("quiet delta fired %v", fired)
	}

	fired := firedNames(e.Check(types.ProjectDelta{
		FilesAdded:  30,
		BugsOpened:  5,
		HealthDrift: -0.3,
	}))
	for _, name := range []string{"rapid_file_growth", "bug_influx", "health_regression"} {
		if reason, ok := fired[name]; !ok || reason == "" {
			t.Errorf("trigger %s should fire with a reason, got %v", name, fired)
		}
	}

	// Positive drift never fires the regression trigger.
	if fired := firedNames(e.Check(types.ProjectDelta{HealthDrift: 0.3})); len(fired) != 0 {
		t.Errorf("improving health fired %v", fired)
	}
}

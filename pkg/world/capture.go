// Package world maintains the agent's model of the project it governs: a
// cheap point-in-time snapshot of the workspace, a recurring-task schedule,
// and delta triggers that notice when the project is changing in ways worth
// thinking about.
package world

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/vigil/pkg/types"
)

const (
	// defaultMaxScanFiles bounds how many source files one capture will
	// open for bug-marker scanning. The walk itself still counts
	// everything.
	defaultMaxScanFiles = 500

	// maxScanFileSize skips scanning files larger than this; generated or
	// binary blobs are not worth reading for markers.
	maxScanFileSize = 1 << 20

	// healthPenaltyPerBug is subtracted from the health score for each
	// open bug marker.
	healthPenaltyPerBug = 0.05
)

// bugMarkers are the comment tokens counted as open bugs.
var bugMarkers = []string{"TODO", "FIXME", "BUG:", "XXX"}

// sourceExtensions are the file types scanned for bug markers.
var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true,
	".rs": true, ".java": true, ".c": true, ".h": true,
	".cpp": true, ".rb": true, ".sh": true,
}

// ignoredDirs are never descended into during capture.
var ignoredDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	".vigil": true, "dist": true, "build": true,
}

// Capturer produces ProjectModel snapshots of a workspace directory.
type Capturer struct {
	root         string
	maxScanFiles int
}

// CapturerOption configures a Capturer.
type CapturerOption func(*Capturer)

// WithMaxScanFiles overrides how many source files are opened per capture.
func WithMaxScanFiles(n int) CapturerOption {
	return func(c *Capturer) {
		c.maxScanFiles = n
	}
}

// NewCapturer creates a capturer rooted at the given workspace directory.
func NewCapturer(root string, opts ...CapturerOption) (*Capturer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}

	c := &Capturer{root: abs, maxScanFiles: defaultMaxScanFiles}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Root returns the workspace root being captured.
func (c *Capturer) Root() string {
	return c.root
}

// Capture walks the workspace and returns a snapshot. The walk honors
// context cancellation between directory entries.
func (c *Capturer) Capture(ctx context.Context) (*types.ProjectModel, error) {
	model := &types.ProjectModel{CapturedAt: time.Now()}
	scanned := 0

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip entries we can't read
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == c.root {
			return nil
		}

		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			model.DirCount++
			return nil
		}

		model.FileCount++
		if scanned < c.maxScanFiles && sourceExtensions[filepath.Ext(path)] {
			scanned++
			model.OpenBugs += countBugMarkers(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("capture workspace: %w", err)
	}

	model.HealthScore = healthScore(model.OpenBugs)
	if scanned == c.maxScanFiles {
		model.Notes = fmt.Sprintf("bug scan capped at %d files", c.maxScanFiles)
	}
	return model, nil
}

// countBugMarkers counts marker occurrences in one file, at most one per
// line. Unreadable or oversized files count zero.
func countBugMarkers(path string) int {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxScanFileSize {
		return 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		for _, marker := range bugMarkers {
			if strings.Contains(line, marker) {
				count++
				break
			}
		}
	}
	return count
}

// healthScore maps open bug count to a 0..1 score.
func healthScore(openBugs int) float64 {
	score := 1.0 - float64(openBugs)*healthPenaltyPerBug
	if score < 0 {
		return 0
	}
	return score
}

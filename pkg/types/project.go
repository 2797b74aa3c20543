package types

import "time"

// ProjectModel is a point-in-time snapshot of the project the agent governs.
// It is produced by the world-model capture collaborator and consumed by the
// quick phase; the scheduler keeps the previous snapshot to compute deltas.
type ProjectModel struct {
	CapturedAt  time.Time
	FileCount   int
	DirCount    int
	OpenBugs    int     // count of open bug markers found in sources
	HealthScore float64 // 0..1, 1 is healthy
	Notes       string
}

// ProjectDelta is the change between two consecutive project snapshots.
type ProjectDelta struct {
	Elapsed     time.Duration
	FilesAdded  int
	BugsOpened  int
	HealthDrift float64 // positive means health improved
}

// DeltaFrom computes the delta from prev to m. A nil prev yields a zero
// delta with only Elapsed populated.
func (m *ProjectModel) DeltaFrom(prev *ProjectModel) ProjectDelta {
	if prev == nil {
		return ProjectDelta{}
	}
	return ProjectDelta{
		Elapsed:     m.CapturedAt.Sub(prev.CapturedAt),
		FilesAdded:  m.FileCount - prev.FileCount,
		BugsOpened:  m.OpenBugs - prev.OpenBugs,
		HealthDrift: m.HealthScore - prev.HealthScore,
	}
}

// ScheduleEntry describes one recurring task managed by the schedule
// collaborator.
type ScheduleEntry struct {
	ID       string
	Name     string
	Interval time.Duration
	LastRun  time.Time
}

// Due reports whether the entry should run at the given time.
func (e *ScheduleEntry) Due(now time.Time) bool {
	if e.Interval <= 0 {
		return false
	}
	return now.Sub(e.LastRun) >= e.Interval
}

// TriggerResult is the outcome of evaluating one world-model trigger.
type TriggerResult struct {
	ID     string
	Name   string
	Fired  bool
	Reason string
}

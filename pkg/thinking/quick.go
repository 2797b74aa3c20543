package thinking

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/vigil/pkg/audit"
	"github.com/entrhq/vigil/pkg/types"
)

// healthObservationThreshold is the score below which the quick phase
// surfaces a health observation.
const healthObservationThreshold = 0.5

// runQuickPhase is the cheap, local tier: no LLM call, target under 50ms.
// It snapshots the project, scans the recent audit window for anomalies,
// and derives observations from schedules, triggers, health, and bugs.
func (s *Scheduler) runQuickPhase(ctx context.Context) error {
	start := time.Now()

	model, err := s.callbacks.CaptureProjectState(ctx)
	if err != nil {
		return fmt.Errorf("capture project state: %w", err)
	}

	// Anomaly scan over the recent audit window, populated elsewhere by the
	// policy gate.
	if result := audit.DetectAnomalousPattern(s.auditLog.Recent(s.auditWindow)); result.Detected {
		s.state.AddObservation(
			types.ObservationPatternDetected,
			fmt.Sprintf("anomaly: %s", result.Type),
			result.Description,
			anomalySeverity(result.Severity),
		)
		s.callbacks.UpdateIdentity(types.IdentityEvent{
			Type:   types.IdentityAnomalyDetected,
			Detail: string(result.Type),
		})
		s.callbacks.PushEvent(types.EventTypeNeuronFired, map[string]interface{}{
			"signal":      string(result.Type),
			"description": result.Description,
			"severity":    string(result.Severity),
		})
	}

	now := time.Now()
	for _, entry := range s.callbacks.GetScheduledTasks() {
		if entry.Due(now) {
			s.state.AddObservation(
				types.ObservationScheduleDue,
				fmt.Sprintf("scheduled task due: %s", entry.Name),
				fmt.Sprintf("interval %s, last run %s", entry.Interval, entry.LastRun.Format(time.RFC3339)),
				types.SeverityLow,
			)
		}
	}

	delta := model.DeltaFrom(s.lastModel)
	for _, trigger := range s.callbacks.CheckTriggers(delta) {
		if trigger.Fired {
			s.state.AddObservation(
				types.ObservationTriggerFired,
				fmt.Sprintf("trigger fired: %s", trigger.Name),
				trigger.Reason,
				types.SeverityMedium,
			)
		}
	}

	if model.HealthScore < healthObservationThreshold {
		severity := types.SeverityMedium
		if model.HealthScore < healthObservationThreshold/2 {
			severity = types.SeverityHigh
		}
		s.state.AddObservation(
			types.ObservationHealthChange,
			fmt.Sprintf("project health low: %.2f", model.HealthScore),
			model.Notes,
			severity,
		)
	}

	if model.OpenBugs > 0 {
		s.state.AddObservation(
			types.ObservationBugDetected,
			fmt.Sprintf("%d open bug markers", model.OpenBugs),
			"",
			types.SeverityMedium,
		)
	}

	s.lastModel = model

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		s.logger.Debugf("quick phase took %s, over the 50ms target", elapsed)
	}
	return nil
}

// anomalySeverity maps detector severities onto observation severities.
func anomalySeverity(severity audit.AnomalySeverity) types.Severity {
	if severity == audit.AnomalyCritical {
		return types.SeverityCritical
	}
	return types.SeverityMedium
}

package types

// EventType defines the type of telemetry event pushed by the governance core.
type EventType string

const (
	EventTypeThinkingUpdate     EventType = "thinking_update"     // EventTypeThinkingUpdate indicates a phase transition or diagnostic update from the scheduler.
	EventTypeNeuronFired        EventType = "neuron_fired"        // EventTypeNeuronFired indicates a quick-phase signal (anomaly, trigger, health change).
	EventTypeConsciousnessEvent EventType = "consciousness_event" // EventTypeConsciousnessEvent indicates a deep-phase insight was surfaced.
	EventTypeJarvisLearning     EventType = "jarvis_learning"     // EventTypeJarvisLearning indicates a meta-learning was folded back into identity.
)

// Event represents a fire-and-forget telemetry event emitted by the core.
// Consumers must not block the emitter; delivery is best-effort.
type Event struct {
	// Type indicates the kind of event.
	Type EventType

	// Payload holds event-specific fields.
	Payload map[string]interface{}
}

// EventSink is a function type for receiving telemetry events.
// A nil sink is valid and means events are dropped.
type EventSink func(eventType EventType, payload map[string]interface{})

// NewThinkingUpdateEvent creates an event describing the scheduler's current phase.
func NewThinkingUpdateEvent(phase, thought string) *Event {
	return &Event{
		Type: EventTypeThinkingUpdate,
		Payload: map[string]interface{}{
			"phase":   phase,
			"thought": thought,
		},
	}
}

// NewNeuronFiredEvent creates an event for a quick-phase signal.
func NewNeuronFiredEvent(signal, description string) *Event {
	return &Event{
		Type: EventTypeNeuronFired,
		Payload: map[string]interface{}{
			"signal":      signal,
			"description": description,
		},
	}
}

// NewConsciousnessEvent creates an event for a deep-phase insight.
func NewConsciousnessEvent(insight string) *Event {
	return &Event{
		Type: EventTypeConsciousnessEvent,
		Payload: map[string]interface{}{
			"insight": insight,
		},
	}
}

// NewLearningEvent creates an event for a meta-learning.
func NewLearningEvent(learning string) *Event {
	return &Event{
		Type: EventTypeJarvisLearning,
		Payload: map[string]interface{}{
			"learning": learning,
		},
	}
}

package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...any)

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "network", "cluster")
	Message   string            // Human-readable message
	Resource  string            // Logical ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceDeclared indicates a resource was added to a template.
	EventResourceDeclared EventType = "resource.declared"
	// EventResourceFailed indicates a resource could not be declared.
	EventResourceFailed EventType = "resource.failed"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
)

// ConsoleObserver implements Observer using standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	log.Print(formatEvent(mergeFields(event, o.contextFields)))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{contextFields: union(o.contextFields, fields)}
}

// LogrObserver implements Observer on top of a logr.Logger.
// Events become structured log lines keyed by event type.
type LogrObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewLogrObserver creates an observer writing to log.
func NewLogrObserver(log logr.Logger) *LogrObserver {
	return &LogrObserver{log: log, contextFields: make(map[string]string)}
}

// Printf implements Observer.
func (o *LogrObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...), fieldsToKV(o.contextFields)...)
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	event = mergeFields(event, o.contextFields)

	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, fieldsToKV(event.Fields)...)

	switch event.Type {
	case EventPhaseFailed, EventResourceFailed:
		o.log.Error(nil, event.Message, kv...)
	case EventResourceDeclared:
		o.log.V(1).Info(event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	return &LogrObserver{log: o.log, contextFields: union(o.contextFields, fields)}
}

func mergeFields(event Event, contextFields map[string]string) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	return event
}

func union(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldsToKV(fields map[string]string) []any {
	kv := make([]any, 0, 2*len(fields))
	for _, k := range sortedKeys(fields) {
		kv = append(kv, k, fields[k])
	}
	return kv
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		fieldParts := make([]string, 0, len(event.Fields))
		for _, k := range sortedKeys(event.Fields) {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceDeclared logs a resource added to a template.
func LogResourceDeclared(observer Observer, phase, resourceType, logicalID string) {
	observer.Event(Event{
		Type:     EventResourceDeclared,
		Phase:    phase,
		Resource: logicalID,
		Message:  fmt.Sprintf("declared %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceFailed logs a resource that could not be declared.
func LogResourceFailed(observer Observer, phase, resourceType, logicalID string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: logicalID,
		Message:  fmt.Sprintf("%s not declared: %v", resourceType, err),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogValidationWarning logs a non-fatal validation finding.
func LogValidationWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventValidationWarning,
		Phase:   phase,
		Message: message,
	})
}

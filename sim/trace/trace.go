package trace

// TraceLevel controls whether events are kept in memory.
type TraceLevel string

const (
	// TraceLevelNone keeps no records (sinks and metrics still see every event).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents keeps every record in the EventLog.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// EventLog collects the records of one simulation run.
type EventLog struct {
	RunID   string
	Records []Record
}

// NewEventLog creates an EventLog ready for recording.
func NewEventLog(runID string) *EventLog {
	return &EventLog{
		RunID:   runID,
		Records: make([]Record, 0),
	}
}

// Record appends a record. Safe on a nil log.
func (l *EventLog) Record(rec Record) {
	if l == nil {
		return
	}
	l.Records = append(l.Records, rec)
}

// ByKind returns the records of the given kind, in emission order.
func (l *EventLog) ByKind(kind Kind) []Record {
	if l == nil {
		return nil
	}
	var out []Record
	for _, r := range l.Records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// ByWorker returns the records emitted by one worker, in emission order.
func (l *EventLog) ByWorker(workerID string) []Record {
	if l == nil {
		return nil
	}
	var out []Record
	for _, r := range l.Records {
		if r.WorkerID == workerID {
			out = append(out, r)
		}
	}
	return out
}

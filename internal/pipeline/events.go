package pipeline

// Phase names one per-file processing phase.
type Phase string

const (
	PhaseSummarize Phase = "summarize"
	PhaseCompanies Phase = "extract_companies"
)

// EventType classifies progress events.
type EventType string

const (
	EventFileStart EventType = "file_start"
	EventChunk     EventType = "chunk"
	EventFileError EventType = "file_error"
	EventFileDone  EventType = "file_done"
	EventRunDone   EventType = "run_done"
)

// Event is one progress observation. File counters are at file granularity,
// chunk counters at chunk granularity within the active phase; both drive the
// progress UI and are part of the pipeline contract, not optional telemetry.
type Event struct {
	Type  EventType `json:"type"`
	Path  string    `json:"path,omitempty"`
	Phase Phase     `json:"phase,omitempty"`

	ProcessedFiles int `json:"processedFiles,omitempty"`
	TotalFiles     int `json:"totalFiles,omitempty"`
	CurrentChunk   int `json:"currentChunk,omitempty"`
	TotalChunks    int `json:"totalChunks,omitempty"`

	Err string `json:"error,omitempty"`
}

// emit sends an event when a sink is attached. Sends are blocking: the
// pipeline is sequential by design, so backpressure from a slow consumer
// simply paces the run.
func emit(events chan<- Event, e Event) {
	if events != nil {
		events <- e
	}
}

package trace

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLSink_WritesOneLinePerRecord(t *testing.T) {
	// GIVEN a sink in a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	sink, err := NewJSONLSink(path, "run-7")
	if err != nil {
		t.Fatalf("NewJSONLSink: %v", err)
	}

	// WHEN two records are emitted and the sink is closed
	records := []Record{
		{Time: 0, Kind: KindArrival, Slot: 0, Item: "A"},
		{Time: 1_000_000, Tick: 2, Kind: KindPick, Slot: 0, WorkerID: "W1", Item: "A", Held: []string{"A"}},
	}
	for _, rec := range records {
		if err := sink.Emit(rec); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// THEN the file holds one JSON object per record, tagged with the run id
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line["run_id"] != "run-7" {
			t.Errorf("line %d: expected run_id run-7, got %v", i, line["run_id"])
		}
	}
	if lines[1]["kind"] != "pick" || lines[1]["worker_id"] != "W1" || lines[1]["time_us"] != float64(1_000_000) {
		t.Errorf("unexpected second line: %v", lines[1])
	}
	if _, ok := lines[0]["worker_id"]; ok {
		t.Error("worker_id should be omitted for belt events")
	}
}

func TestJSONLSink_NilAndClosed_AreNoOps(t *testing.T) {
	var nilSink *JSONLSink
	if err := nilSink.Emit(Record{}); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := nilSink.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}

	sink, err := NewJSONLSink(filepath.Join(t.TempDir(), "e.jsonl"), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Emit(Record{Kind: KindPick}); err != nil {
		t.Errorf("Emit after Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestLogSink_NeverFails(t *testing.T) {
	var s Sink = LogSink{}
	if err := s.Emit(Record{Kind: KindDelivered, Item: "P"}); err != nil {
		t.Errorf("Emit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

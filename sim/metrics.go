// Tracks line-wide counters such as arrivals, drops, picks and deliveries.

package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/beltsim/sim/trace"
)

// OtherBucket collects unpicked items that are not recipe components
// (noise components and partial builds).
const OtherBucket = "other"

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	RunID        string `json:"run_id"`
	Ticks        int64  `json:"ticks"`
	SimEndedTime int64  `json:"sim_ended_time_us"`

	Generated  int `json:"generated"`   // arrivals produced by the source
	Arrivals   int `json:"arrivals"`    // arrivals injected onto the belt
	EntryDrops int `json:"entry_drops"` // arrivals lost at an occupied entry slot
	ExitDrops  int `json:"exit_drops"`  // unfinished items that fell off the exit
	Delivered  int `json:"delivered"`   // finished products that left the belt

	Picks               int `json:"picks"`
	AssembliesStarted   int `json:"assemblies_started"`
	AssembliesCompleted int `json:"assemblies_completed"`
	ProductsBuilt       int `json:"products_built"`
	Placed              int `json:"placed"`

	// Unpicked counts items that fell off the exit per component id,
	// with everything else under OtherBucket.
	Unpicked map[string]int `json:"unpicked"`
	// Combinations lists the held sets of delivered products, in delivery order.
	Combinations []string `json:"combinations"`
	// HeldAtEnd maps worker id to its hands when the run stopped, e.g. "A+B | C".
	HeldAtEnd map[string]string `json:"held_at_end"`
	// PendingAtEnd counts arrivals queued for a tick that never came.
	PendingAtEnd int `json:"pending_at_end"`
}

// NewMetrics creates an empty Metrics with the unpicked buckets of the recipe.
func NewMetrics(recipe *Recipe) *Metrics {
	m := &Metrics{
		Unpicked:     make(map[string]int),
		Combinations: make([]string, 0),
		HeldAtEnd:    make(map[string]string),
	}
	if recipe != nil {
		for _, id := range recipe.Components().Strings() {
			m.Unpicked[id] = 0
		}
	}
	m.Unpicked[OtherBucket] = 0
	return m
}

// observe updates counters for one emitted record.
func (m *Metrics) observe(rec trace.Record) {
	switch rec.Kind {
	case trace.KindArrival:
		m.Arrivals++
	case trace.KindEntryDrop:
		m.EntryDrops++
	case trace.KindExitDrop:
		m.ExitDrops++
		if _, ok := m.Unpicked[rec.Item]; ok {
			m.Unpicked[rec.Item]++
		} else {
			m.Unpicked[OtherBucket]++
		}
	case trace.KindDelivered:
		m.Delivered++
		m.Combinations = append(m.Combinations, strings.Join(rec.Held, "+"))
	case trace.KindPick:
		m.Picks++
	case trace.KindMergeStart:
		m.AssembliesStarted++
	case trace.KindMergeComplete:
		m.AssembliesCompleted++
	case trace.KindPlace:
		m.Placed++
	}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Run ID               : %s\n", m.RunID)
	fmt.Printf("Belt Ticks           : %d\n", m.Ticks)
	fmt.Printf("Simulated Time       : %.3f s\n", float64(m.SimEndedTime)/1e6)
	fmt.Printf("Arrivals             : %d injected, %d dropped at entry\n", m.Arrivals, m.EntryDrops)
	fmt.Printf("Picks                : %d\n", m.Picks)
	fmt.Printf("Assemblies           : %d started, %d completed\n", m.AssembliesStarted, m.AssembliesCompleted)
	fmt.Printf("Products Built       : %d\n", m.ProductsBuilt)
	fmt.Printf("Products Delivered   : %d\n", m.Delivered)
	fmt.Printf("Unpicked Items       : %s\n", formatCounts(m.Unpicked))
	if len(m.HeldAtEnd) > 0 {
		fmt.Printf("Held At End          : %s\n", formatHands(m.HeldAtEnd))
	}
}

// SaveResults writes the metrics as indented JSON to path.
func (m *Metrics) SaveResults(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	logrus.Infof("Metrics written to %s", path)
	return nil
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func formatHands(hands map[string]string) string {
	keys := make([]string, 0, len(hands))
	for k := range hands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s(%s)", k, hands[k])
	}
	return strings.Join(parts, " ")
}

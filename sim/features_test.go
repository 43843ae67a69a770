package sim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/inference-sim/beltsim/sim/trace"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeLineScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// lineContext carries one scenario's configuration and run.
type lineContext struct {
	cfg      Config
	arrivals ArrivalSource
	sim      *Simulator
}

func (c *lineContext) reset() {
	c.cfg = Config{
		Workers: WorkerConfig{Slots: map[int]int{}},
		Run:     RunConfig{TraceLevel: string(trace.TraceLevelEvents)},
	}
	c.arrivals = nil
	c.sim = nil
}

func InitializeLineScenario(sc *godog.ScenarioContext) {
	c := &lineContext{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	sc.Step(`^a recipe requiring "([^"]*)" that builds "([^"]*)"$`, c.aRecipe)
	sc.Step(`^a belt of (\d+) slots ticking every (\d+)s$`, c.aBelt)
	sc.Step(`^(\d+) workers? at slot (\d+) assembling in (\d+)s$`, c.workersAt)
	sc.Step(`^components arrive "([^"]*)"$`, c.componentsArrive)
	sc.Step(`^components arrive every (\d+)ms$`, c.componentsArriveEvery)
	sc.Step(`^the line runs until (\d+)s$`, c.runsUntil)
	sc.Step(`^the line finishes after (\d+)s$`, c.finishesAfter)
	sc.Step(`^worker "([^"]*)" holds "([^"]*)" in the left hand$`, c.workerHolds)
	sc.Step(`^slot (\d+) holds "([^"]*)"$`, c.slotHolds)
	sc.Step(`^(\d+) products? (?:is|are) delivered$`, c.productsDelivered)
	sc.Step(`^every delivered product holds "([^"]*)"$`, c.deliveredHold)
	sc.Step(`^(\d+) "([^"]*)" components? fell off unpicked$`, c.fellOffUnpicked)
	sc.Step(`^(\d+) arrivals were dropped at the entry$`, c.droppedAtEntry)
	sc.Step(`^every arrival is injected, dropped, or pending$`, c.arrivalsConserved)
	sc.Step(`^only worker "([^"]*)" picked at (\d+)s$`, c.onlyWorkerPicked)
}

func (c *lineContext) aRecipe(components, product string) error {
	c.cfg.Recipe = RecipeConfig{Product: product, Components: strings.Split(components, ",")}
	return nil
}

func (c *lineContext) aBelt(length int, tickSeconds int) error {
	c.cfg.Belt = BeltConfig{
		Length:     length,
		TickPeriod: int64(tickSeconds) * second,
		EntryIndex: 0,
		ExitIndex:  length - 1,
	}
	return nil
}

func (c *lineContext) workersAt(n, slot, assemblySeconds int) error {
	c.cfg.Workers.Slots[slot] = n
	c.cfg.Workers.AssemblyDuration = int64(assemblySeconds) * second
	return nil
}

func (c *lineContext) componentsArrive(list string) error {
	var arrivals []Arrival
	for _, entry := range strings.Split(list, ",") {
		id, at, ok := strings.Cut(strings.TrimSpace(entry), "@")
		if !ok {
			return fmt.Errorf("arrival %q must look like ID@seconds", entry)
		}
		secs, err := strconv.Atoi(at)
		if err != nil {
			return fmt.Errorf("arrival %q: %w", entry, err)
		}
		arrivals = append(arrivals, Arrival{Time: int64(secs) * second, Component: ComponentID(id)})
	}
	c.arrivals = script(arrivals...)
	return nil
}

func (c *lineContext) componentsArriveEvery(ms int) error {
	c.arrivals = &constantSource{interval: int64(ms) * 1000, ids: []ComponentID{"A", "B", "C"}}
	return nil
}

func (c *lineContext) build(horizonSeconds int) error {
	if c.sim != nil {
		return nil
	}
	c.cfg.Run.Horizon = int64(horizonSeconds) * second
	s, err := NewSimulator(c.cfg, c.arrivals, WithRunID("feature"))
	if err != nil {
		return err
	}
	c.sim = s
	return nil
}

func (c *lineContext) runsUntil(seconds int) error {
	if err := c.build(3600); err != nil {
		return err
	}
	return c.sim.RunUntil(context.Background(), int64(seconds)*second)
}

func (c *lineContext) finishesAfter(seconds int) error {
	if err := c.build(seconds); err != nil {
		return err
	}
	c.sim.Horizon = int64(seconds) * second
	return c.sim.Run(context.Background())
}

func (c *lineContext) workerHolds(id, item string) error {
	w := c.sim.WorkerByID(id)
	if w == nil {
		return fmt.Errorf("no worker %s", id)
	}
	left, _ := w.Hands()
	if left.String() != item {
		return fmt.Errorf("worker %s holds %q, want %q", id, left.String(), item)
	}
	return nil
}

func (c *lineContext) slotHolds(slot int, item string) error {
	if got := c.sim.Belt.Slot(slot).Peek().String(); got != item {
		return fmt.Errorf("slot %d holds %q, want %q", slot, got, item)
	}
	return nil
}

func (c *lineContext) productsDelivered(n int) error {
	if got := c.sim.Metrics.Delivered; got != n {
		return fmt.Errorf("delivered %d products, want %d", got, n)
	}
	return nil
}

func (c *lineContext) deliveredHold(combo string) error {
	for _, got := range c.sim.Metrics.Combinations {
		if got != combo {
			return fmt.Errorf("delivered product holds %q, want %q", got, combo)
		}
	}
	return nil
}

func (c *lineContext) fellOffUnpicked(n int, id string) error {
	if got := c.sim.Metrics.Unpicked[id]; got != n {
		return fmt.Errorf("%d %s fell off unpicked, want %d", got, id, n)
	}
	return nil
}

func (c *lineContext) droppedAtEntry(n int) error {
	if got := c.sim.Metrics.EntryDrops; got != n {
		return fmt.Errorf("%d arrivals dropped at entry, want %d", got, n)
	}
	return nil
}

func (c *lineContext) arrivalsConserved() error {
	m := c.sim.Metrics
	if m.Generated != m.Arrivals+m.EntryDrops+m.PendingAtEnd {
		return fmt.Errorf("generated %d != injected %d + dropped %d + pending %d",
			m.Generated, m.Arrivals, m.EntryDrops, m.PendingAtEnd)
	}
	return nil
}

func (c *lineContext) onlyWorkerPicked(id string, seconds int) error {
	at := int64(seconds) * second
	for _, rec := range c.sim.Trace.ByKind(trace.KindPick) {
		if rec.Time == at && rec.WorkerID != id {
			return fmt.Errorf("worker %s also picked at %ds", rec.WorkerID, seconds)
		}
	}
	for _, rec := range c.sim.Trace.ByWorker(id) {
		if rec.Kind == trace.KindPick && rec.Time == at {
			return nil
		}
	}
	return fmt.Errorf("worker %s did not pick at %ds", id, seconds)
}

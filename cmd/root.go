package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/inference-sim/beltsim/sim"
	"github.com/inference-sim/beltsim/sim/trace"
	"github.com/inference-sim/beltsim/sim/workload"
)

var (
	logLevel    string // Log verbosity level
	eventsPath  string // JSONL event stream output
	resultsPath string // JSON metrics output
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "beltsim",
	Short: "Discrete-event simulator for a conveyor belt assembly line",
}

// runCmd executes the simulation described by the resolved configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the belt simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		fc, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		s, err := runSimulation(ctx, fc, eventsPath)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		s.Metrics.Print()
		if s.Trace != nil {
			printTraceSummary(trace.Summarize(s.Trace))
		}
		if resultsPath != "" {
			if err := s.Metrics.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("Saving results: %v", err)
			}
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// validateCmd checks a configuration without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration and print it fully resolved",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		fc, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		out, err := yaml.Marshal(fc)
		if err != nil {
			logrus.Fatalf("Rendering configuration: %v", err)
		}
		fmt.Print(string(out))
		logrus.Info("Configuration is valid.")
	},
}

// defaultConfigCmd prints the built-in configuration as a starting point
var defaultConfigCmd = &cobra.Command{
	Use:   "default-config",
	Short: "Print the built-in configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(defaultConfigYAML)
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runSimulation builds the arrival source and simulator for fc and runs it to completion.
// When eventsPath is set every event is also written there as JSON lines.
func runSimulation(ctx context.Context, fc *FileConfig, eventsPath string) (*sim.Simulator, error) {
	cfg := fc.ToSimConfig()
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Run.Seed))
	arrivals, err := workload.NewArrivalSource(fc.Arrivals, rng)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	opts := []sim.Option{sim.WithRunID(runID), sim.WithSinks(trace.LogSink{})}
	if eventsPath != "" {
		sink, err := trace.NewJSONLSink(eventsPath, runID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := sink.Close(); cerr != nil {
				logrus.Warnf("closing event log: %v", cerr)
			}
		}()
		opts = append(opts, sim.WithSinks(sink))
	}

	s, err := sim.NewSimulator(cfg, arrivals, opts...)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting simulation with seed=%d, tick=%s, assembly=%s, %d workers",
		cfg.Run.Seed, fc.Belt.TickPeriod, fc.Workers.AssemblyDuration, len(s.Workers))
	if err := s.Run(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func printTraceSummary(summary *trace.Summary) {
	fmt.Println("=== Event Trace Summary ===")
	fmt.Printf("Total Events         : %d\n", summary.TotalEvents)
	workers := make([]string, 0, len(summary.PicksByWorker))
	for id := range summary.PicksByWorker {
		workers = append(workers, id)
	}
	sort.Strings(workers)
	for _, id := range workers {
		fmt.Printf("  %-6s picks       : %d\n", id, summary.PicksByWorker[id])
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addOverrideFlags(runCmd)
	runCmd.Flags().StringVar(&eventsPath, "events", "", "Write every simulation event to this JSONL file")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write the final metrics as JSON to this file")

	addOverrideFlags(validateCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultConfigCmd)
}

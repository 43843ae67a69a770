package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. BELTSIM_SEED or BELTSIM_MAX_TICKS.
const envPrefix = "BELTSIM"

// addOverrideFlags registers the flags that may override the configuration file.
func addOverrideFlags(c *cobra.Command) {
	c.Flags().String("config", "", "Path to a YAML configuration file (default: built-in configuration)")
	c.Flags().Int64("seed", 0, "Seed for the arrival stream (overrides the file)")
	c.Flags().Duration("horizon", 0, "Simulated time after which no tick starts, e.g. 10m (overrides the file)")
	c.Flags().Int64("max-ticks", 0, "Stop after this many belt ticks; 0 = horizon only (overrides the file)")
	c.Flags().Bool("realtime", false, "Pace belt ticks against the wall clock (overrides the file)")
	c.Flags().Float64("speed", 0, "Realtime speed-up factor (overrides the file)")
	c.Flags().String("trace-level", "", "Keep events in memory: none, events (overrides the file)")
}

// newOverlay builds the precedence chain: changed flags, then BELTSIM_* variables.
// Flag defaults never override the file.
func newOverlay(c *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(c.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}

// applyOverlay copies every explicitly set override onto fc.
func applyOverlay(fc *FileConfig, v *viper.Viper) {
	if v.IsSet("seed") {
		fc.Seed = v.GetInt64("seed")
	}
	if v.IsSet("horizon") {
		fc.Run.Horizon = v.GetDuration("horizon")
	}
	if v.IsSet("max-ticks") {
		fc.Run.MaxTicks = v.GetInt64("max-ticks")
	}
	if v.IsSet("realtime") {
		fc.Run.Realtime = v.GetBool("realtime")
	}
	if v.IsSet("speed") {
		fc.Run.Speed = v.GetFloat64("speed")
	}
	if v.IsSet("trace-level") {
		fc.Run.TraceLevel = v.GetString("trace-level")
	}
}

// resolveConfig loads .env (if present), the configuration file, and the
// env/flag overlay, then validates the result.
func resolveConfig(c *cobra.Command) (*FileConfig, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v, err := newOverlay(c)
	if err != nil {
		return nil, err
	}
	fc, err := LoadFileConfig(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	applyOverlay(fc, v)
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return fc, nil
}

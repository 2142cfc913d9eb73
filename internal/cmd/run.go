package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/reliefmesh/reliefmesh"
	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/orchestrator"
)

// scenarioFile is the YAML shape accepted by --scenario.
type scenarioFile struct {
	Goal           string         `yaml:"goal"`
	Resources      map[string]int `yaml:"resources"`
	MaxIterations  int            `yaml:"max_iterations"`
	ScoreThreshold float64        `yaml:"score_threshold"`
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one relief mission to completion",
		Example: `  reliefmesh run --goal "flood response" --resource water=3 --resource medical=2 --resource food=4
  reliefmesh run --scenario flood.yaml --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			goal, err := buildGoal(v)
			if err != nil {
				return err
			}

			verbose := v.GetBool("verbose")
			logger := logging.Logger(logging.NoOpLogger{})
			if verbose {
				logger = logging.NewJSONLogger(cmd.ErrOrStderr(), slog.LevelDebug)
			}

			var transitions []orchestrator.Transition
			mesh, err := reliefmesh.New(func(o *reliefmesh.Options) {
				o.Logger = logger
				o.OrchestratorOptions = append(o.OrchestratorOptions, func(oo *orchestrator.Options) {
					if n := v.GetInt("max-iterations"); n > 0 {
						oo.MaxIterations = n
					}
					if t := v.GetFloat64("score-threshold"); t > 0 {
						oo.ScoreThreshold = t
					}
					if d := v.GetDuration("agent-timeout"); d > 0 {
						oo.AgentTimeout = d
					}
					oo.ConcurrentRetrieval = v.GetBool("concurrent-retrieval")
					oo.OnTransition = func(tr orchestrator.Transition) {
						transitions = append(transitions, tr)
					}
				})
			})
			if err != nil {
				return err
			}

			result, runErr := mesh.Orchestrate(cmd.Context(), goal)
			if result != nil {
				if err := printResult(cmd, result, transitions, verbose); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().String("goal", "", "Mission objective")
	cmd.Flags().StringSlice("resource", nil, "Available supply as kind=count (repeatable)")
	cmd.Flags().String("scenario", "", "YAML scenario file (flags override its values)")
	cmd.Flags().Int("max-iterations", 0, "Iteration budget")
	cmd.Flags().Float64("score-threshold", 0, "Score at which the loop stops")
	cmd.Flags().Duration("agent-timeout", 30*time.Second, "Per-agent timeout")
	cmd.Flags().Bool("concurrent-retrieval", false, "Fan out site searches")
	cmd.Flags().BoolP("verbose", "v", false, "Log agent activity and print the transition log")

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		cmd.RunE = func(_ *cobra.Command, _ []string) error { return err }
	}

	return cmd
}

// buildGoal assembles the goal from the scenario file (if any) overlaid with
// flags and environment.
func buildGoal(v *viper.Viper) (core.Goal, error) {
	goal := core.Goal{Resources: map[string]int{}}

	if path := v.GetString("scenario"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return core.Goal{}, fmt.Errorf("read scenario: %w", err)
		}
		var sc scenarioFile
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return core.Goal{}, fmt.Errorf("parse scenario: %w", err)
		}
		goal.Objective = sc.Goal
		for k, n := range sc.Resources {
			goal.Resources[k] = n
		}
		if sc.MaxIterations > 0 && !v.IsSet("max-iterations") {
			v.Set("max-iterations", sc.MaxIterations)
		}
		if sc.ScoreThreshold > 0 && !v.IsSet("score-threshold") {
			v.Set("score-threshold", sc.ScoreThreshold)
		}
	}

	if g := v.GetString("goal"); g != "" {
		goal.Objective = g
	}
	for _, spec := range v.GetStringSlice("resource") {
		kind, countStr, ok := strings.Cut(spec, "=")
		if !ok {
			return core.Goal{}, fmt.Errorf("invalid resource %q, want kind=count", spec)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return core.Goal{}, fmt.Errorf("invalid resource count %q: %w", countStr, err)
		}
		goal.Resources[strings.TrimSpace(kind)] = count
	}

	if err := goal.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("invalid goal (need --goal and at least one --resource): %w", err)
	}
	return goal, nil
}

func printResult(cmd *cobra.Command, result *orchestrator.Result, transitions []orchestrator.Transition, verbose bool) error {
	out := cmd.OutOrStdout()

	if verbose {
		for _, tr := range transitions {
			fmt.Fprintf(out, "%s  %s -> %s (iteration %d)\n", tr.Timestamp.Format(time.RFC3339), tr.From, tr.To, tr.Iteration)
		}
		fmt.Fprintln(out)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

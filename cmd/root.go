// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/greensim/greensim/sim"
	"github.com/greensim/greensim/sim/cluster"
)

var (
	configPath string
	seed       int64
	episodes   int
	logLevel   string
	resultDir  string
)

var rootCmd = &cobra.Command{
	Use:   "greensim",
	Short: "Discrete-event simulator for hierarchical multi-datacenter green scheduling",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the green-datacenter simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		settings, err := sim.LoadSettings(configPath)
		if err != nil {
			logrus.Fatalf("loading config %q: %v", configPath, err)
		}

		logrus.Infof("starting simulation: %d datacenter(s), seed=%d, episodes=%d", len(settings.Datacenters), seed, episodes)

		simCore, err := cluster.NewSimulation(*settings)
		if err != nil {
			logrus.Fatalf("constructing simulation: %v", err)
		}

		for ep := 0; ep < episodes; ep++ {
			runEpisode(simCore, seed+int64(ep))
			simCore.DumpResults(fmt.Sprintf("%s/episode-%d", resultDir, ep))
		}

		if err := simCore.Close(); err != nil {
			logrus.Warnf("close: %v", err)
		}
		logrus.Info("simulation complete")
	},
}

// runEpisode drives one reset/step loop to termination using a trivial
// built-in policy (no-route / no-assign) standing in for the external RL
// agent, which is out of scope for this core (spec.md §1).
func runEpisode(simCore *cluster.Simulation, episodeSeed int64) {
	_, _, info, err := simCore.Reset(episodeSeed, nil)
	if err != nil {
		logrus.Errorf("reset(seed=%d): %v", episodeSeed, err)
		return
	}

	dcIDs := simCore.DatacenterIDs()
	step := 0
	for {
		globalActions := make([]int, 0)
		localActions := make(map[int]int, len(dcIDs))
		for _, dcID := range dcIDs {
			localActions[dcID] = -1
		}

		_, _, globalReward, _, terminated, truncated, stepInfo := simCore.Step(globalActions, localActions)
		info = stepInfo
		step++

		if terminated || truncated {
			logrus.Infof("episode seed=%d finished after %d steps: clock=%d, finished=%d, terminated=%v, truncated=%v, last_reward=%.4f",
				episodeSeed, step, info.Clock, info.CloudletsFinishedTotal, terminated, truncated, globalReward)
			break
		}
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to the simulation settings YAML file")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Base random seed for the first episode")
	runCmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to run")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&resultDir, "results", "results", "Directory to write per-episode CSV result dumps")

	rootCmd.AddCommand(runCmd)
}

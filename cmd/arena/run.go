// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"

	"github.com/arena-sim/arena/archive"
	"github.com/arena-sim/arena/env"
	_ "github.com/arena-sim/arena/processor"
	"github.com/arena-sim/arena/sim"
	"github.com/arena-sim/arena/state"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run a simulation described by a configuration file",
	ArgsUsage: "<config.toml>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "steps",
			Usage: "override the number of steps from the configuration",
		},
		&cli.StringFlag{
			Name:  "archive",
			Usage: "override the archive location from the configuration",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every processed transaction",
		},
	},
}

func doRun(context *cli.Context) (err error) {
	if context.Args().Len() < 1 {
		return fmt.Errorf("missing configuration file argument")
	}
	config, err := loadConfig(context.Args().Get(0))
	if err != nil {
		return err
	}
	if steps := context.Int("steps"); steps > 0 {
		config.Steps = steps
	}
	if path := context.String("archive"); path != "" {
		config.Archive = path
	}

	logger := logrus.New()
	if context.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	backend, err := sim.NewBackend(config.Backend, nil)
	if err != nil {
		return fmt.Errorf("invalid backend, use one of: %v: %w",
			maps.Keys(sim.GetAllRegisteredBackends()), err)
	}

	options := []env.Option{
		env.WithLogger(logger),
		env.WithBlockInfo(sim.BlockInfo{ChainID: sim.Word(sim.NewValue(config.ChainID))}),
	}
	var recorder *archive.Recorder
	if config.Archive != "" {
		recorder, err = archive.NewRecorder(config.Archive)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := recorder.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		options = append(options, env.WithObserver(recorder))
	}

	environment := env.New(state.NewStore(), backend, nil, options...)
	for _, agentConfig := range config.Agents {
		agent, err := buildAgent(agentConfig)
		if err != nil {
			return err
		}
		accounts := map[sim.Address]sim.Value{
			parseAddress(agentConfig.Account): sim.NewValue(agentConfig.Balance),
		}
		if err := environment.RegisterAgent(sim.AgentID(agentConfig.ID), agent, accounts); err != nil {
			return err
		}
	}

	fmt.Printf("Running %d agents for %d steps ...\n", len(config.Agents), config.Steps)
	start := time.Now()
	executed, err := environment.Run(config.Steps)
	if err != nil {
		return fmt.Errorf("simulation aborted after %d steps: %w", executed, err)
	}
	duration := time.Since(start)

	log := environment.ExecutionLog()
	rate := float64(len(log)) / duration.Seconds()
	fmt.Printf("Executed %d steps with %d transactions in %v (~%s transactions per second)\n",
		executed, len(log), duration.Round(time.Millisecond),
		unitconv.FormatPrefix(rate, unitconv.SI, 1))
	printSummary(log)
	return err
}

func printSummary(log []env.LogEntry) {
	counts := map[sim.Status]int{}
	var gas sim.Gas
	for _, entry := range log {
		counts[entry.Result.Status]++
		gas += entry.Result.GasUsed
	}
	for _, status := range []sim.Status{
		sim.StatusSuccess,
		sim.StatusReverted,
		sim.StatusFailed,
		sim.StatusForced,
	} {
		if counts[status] > 0 {
			fmt.Printf("  %v: %d\n", status, counts[status])
		}
	}
	fmt.Printf("  total gas: %s\n", unitconv.FormatPrefix(float64(gas), unitconv.SI, 1))
}

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
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml"

	"github.com/arena-sim/arena/agents"
	"github.com/arena-sim/arena/sim"
)

// Config describes a complete simulation setup loaded from a TOML file.
type Config struct {
	Steps   int    `toml:"steps"`
	Backend string `toml:"backend"`
	Archive string `toml:"archive"`
	ChainID uint64 `toml:"chain-id"`

	Agents []AgentConfig `toml:"agents"`
}

// AgentConfig describes one agent of the simulated population.
type AgentConfig struct {
	ID       string `toml:"id"`
	Strategy string `toml:"strategy"`
	Account  string `toml:"account"`
	Balance  uint64 `toml:"balance"`

	// Transferrer settings.
	Amount     uint64   `toml:"amount"`
	Recipients []string `toml:"recipients"`

	// Trader settings.
	MaxAmount uint64 `toml:"max-amount"`
	Seed      uint64 `toml:"seed"`
}

func loadConfig(path string) (Config, error) {
	config := Config{
		Steps:   100,
		Backend: "arena",
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if config.Steps <= 0 {
		return Config{}, fmt.Errorf("invalid number of steps: %d", config.Steps)
	}
	if len(config.Agents) == 0 {
		return Config{}, fmt.Errorf("configuration does not define any agents")
	}
	for i, agent := range config.Agents {
		if agent.ID == "" {
			return Config{}, fmt.Errorf("agent %d has no id", i)
		}
		if agent.Account == "" {
			return Config{}, fmt.Errorf("agent %v has no account", agent.ID)
		}
	}
	return config, nil
}

// buildAgent instantiates the strategy described by the given configuration.
func buildAgent(config AgentConfig) (sim.Agent, error) {
	account := parseAddress(config.Account)
	switch config.Strategy {
	case "", "transferrer":
		recipients := make([]sim.Address, 0, len(config.Recipients))
		for _, recipient := range config.Recipients {
			recipients = append(recipients, parseAddress(recipient))
		}
		return &agents.Transferrer{
			Account:    account,
			Recipients: recipients,
			Amount:     sim.NewValue(config.Amount),
		}, nil
	case "trader":
		peers := make([]sim.Address, 0, len(config.Recipients))
		for _, peer := range config.Recipients {
			peers = append(peers, parseAddress(peer))
		}
		maxAmount := config.MaxAmount
		if maxAmount == 0 {
			maxAmount = 100
		}
		return agents.NewRandomTrader(account, peers, maxAmount, config.Seed), nil
	}
	return nil, fmt.Errorf("unknown agent strategy %q", config.Strategy)
}

func parseAddress(value string) sim.Address {
	return sim.Address(common.HexToAddress(value))
}

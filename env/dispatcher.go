// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package env

import (
	"slices"

	"github.com/arena-sim/arena/sim"
)

// Dispatcher decides which agents get to act in a simulation step and in
// which order. Implementations must be deterministic: for the same step
// counter and roster they must produce the same schedule, since schedule
// stability is what makes whole simulation runs reproducible. The roster is
// always presented in agent registration order.
type Dispatcher interface {
	Schedule(step uint64, roster []sim.AgentID) []sim.AgentID
}

// RoundRobin is the baseline scheduling policy: every registered agent is
// polled exactly once per step, in registration order. Ties between agents
// wanting to act in the same step are broken by registration order alone,
// never by any economic attribute.
type RoundRobin struct{}

func (RoundRobin) Schedule(_ uint64, roster []sim.AgentID) []sim.AgentID {
	return slices.Clone(roster)
}

// TakeTurns is an alternative policy granting a single agent per step,
// rotating through the roster in registration order.
type TakeTurns struct{}

func (TakeTurns) Schedule(step uint64, roster []sim.AgentID) []sim.AgentID {
	if len(roster) == 0 {
		return nil
	}
	return []sim.AgentID{roster[int(step%uint64(len(roster)))]}
}

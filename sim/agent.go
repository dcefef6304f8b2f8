// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sim

//go:generate mockgen -source agent.go -destination agent_mock.go -package sim

// AgentID is the stable identifier an agent is registered under. Dispatch
// order is defined by registration order, not by identifier ordering.
type AgentID string

// Agent is an actor submitting transactions to the simulated ledger
// according to its own strategy. Implementations must be pure with respect
// to the environment: all state observations go through the provided
// StateReader, and any internal randomness must be deterministically seeded
// so that runs are reproducible.
type Agent interface {
	// DecideNextAction produces the transaction the agent wants to submit
	// this step, or nil if the agent passes. The reader reflects all state
	// changes committed earlier in the same step.
	DecideNextAction(StateReader) *Transaction

	// ReceiveResult delivers the execution result of the transaction this
	// agent submitted most recently.
	ReceiveResult(Result)
}

// Observer is notified of every entry appended to an environment's
// execution log, including forced-state installations. Observers must not
// mutate the simulation; they are intended for recording and analysis.
type Observer interface {
	ObserveResult(step uint64, agent AgentID, tx Transaction, result Result)
}

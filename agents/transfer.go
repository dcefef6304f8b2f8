// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package agents provides ready-made agent strategies for simulation runs.
// All strategies are deterministic: their decisions depend only on their
// configuration, their seed, and the observed chain state.
package agents

import (
	"github.com/arena-sim/arena/sim"
)

// Transferrer is the simplest possible active agent: every time it is asked
// to act it sends a fixed amount from its account to the next recipient in
// its list, cycling through the list indefinitely. It stops acting once its
// balance no longer covers the transfer.
type Transferrer struct {
	Account    sim.Address
	Recipients []sim.Address
	Amount     sim.Value

	next     int
	failures int
}

func (t *Transferrer) DecideNextAction(state sim.StateReader) *sim.Transaction {
	if len(t.Recipients) == 0 {
		return nil
	}
	if state.GetBalance(t.Account).Cmp(t.Amount) < 0 {
		return nil
	}
	recipient := t.Recipients[t.next%len(t.Recipients)]
	t.next++
	return &sim.Transaction{
		Sender:    t.Account,
		Recipient: &recipient,
		Value:     t.Amount,
	}
}

func (t *Transferrer) ReceiveResult(result sim.Result) {
	if result.Status != sim.StatusSuccess {
		t.failures++
	}
}

// Failures reports how many of the agent's transactions did not succeed.
func (t *Transferrer) Failures() int {
	return t.failures
}

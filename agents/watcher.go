// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package agents

import (
	"github.com/arena-sim/arena/sim"
)

// Watcher is a passive agent: it never submits a transaction but samples a
// storage slot of a contract every time it is polled. The collected series
// can be inspected after the run, e.g. to track a price or counter variable
// over simulated time.
type Watcher struct {
	Contract sim.Address
	Slot     sim.Key

	samples []sim.Word
}

func (w *Watcher) DecideNextAction(state sim.StateReader) *sim.Transaction {
	w.samples = append(w.samples, state.GetStorage(w.Contract, w.Slot))
	return nil
}

func (w *Watcher) ReceiveResult(sim.Result) {}

// Samples returns the observed slot values, one per poll.
func (w *Watcher) Samples() []sim.Word {
	return w.samples
}

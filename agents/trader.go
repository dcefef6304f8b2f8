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
	"pgregory.net/rand"

	"github.com/arena-sim/arena/sim"
)

// RandomTrader sends randomly sized transfers to randomly picked peers,
// driven by a seeded generator. Two traders created with the same seed and
// configuration make the same sequence of decisions, which keeps whole
// simulation runs reproducible.
type RandomTrader struct {
	account   sim.Address
	peers     []sim.Address
	maxAmount uint64
	rand      *rand.Rand

	received []sim.Result
}

// NewRandomTrader creates a trader controlling the given account. The
// maximum transfer amount must be positive.
func NewRandomTrader(account sim.Address, peers []sim.Address, maxAmount uint64, seed uint64) *RandomTrader {
	return &RandomTrader{
		account:   account,
		peers:     peers,
		maxAmount: maxAmount,
		rand:      rand.New(seed),
	}
}

func (t *RandomTrader) DecideNextAction(state sim.StateReader) *sim.Transaction {
	if len(t.peers) == 0 {
		return nil
	}
	amount := sim.NewValue(t.rand.Uint64n(t.maxAmount) + 1)
	if state.GetBalance(t.account).Cmp(amount) < 0 {
		return nil
	}
	peer := t.peers[t.rand.Intn(len(t.peers))]
	return &sim.Transaction{
		Sender:    t.account,
		Recipient: &peer,
		Value:     amount,
	}
}

func (t *RandomTrader) ReceiveResult(result sim.Result) {
	t.received = append(t.received, result)
}

// Results returns the outcomes of all transactions the trader submitted.
func (t *RandomTrader) Results() []sim.Result {
	return t.received
}

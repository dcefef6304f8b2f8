// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"bytes"
	"slices"

	"golang.org/x/crypto/sha3"

	"github.com/arena-sim/arena/sim"
)

// transactionContext buffers all state mutations of a single transaction on
// top of a read-only state snapshot. Nothing is written to the underlying
// state; the accumulated changes are extracted as a sim.StateDiff once the
// execution succeeded. Snapshots are implemented as positions in an undo
// log, following the usual journaling approach of EVM implementations.
type transactionContext struct {
	base     sim.StateReader
	accounts map[sim.Address]*accountState
	logs     []sim.Log
	undo     []func()
}

type accountState struct {
	balance   sim.Value
	nonce     uint64
	code      sim.Code
	codeDirty bool
	storage   map[sim.Key]sim.Word
}

func newTransactionContext(base sim.StateReader) *transactionContext {
	return &transactionContext{
		base:     base,
		accounts: map[sim.Address]*accountState{},
	}
}

// touch loads the account into the buffer on first access.
func (c *transactionContext) touch(addr sim.Address) *accountState {
	if account, found := c.accounts[addr]; found {
		return account
	}
	account := &accountState{
		balance: c.base.GetBalance(addr),
		nonce:   c.base.GetNonce(addr),
		code:    c.base.GetCode(addr),
		storage: map[sim.Key]sim.Word{},
	}
	c.accounts[addr] = account
	return account
}

func (c *transactionContext) AccountExists(addr sim.Address) bool {
	if account, found := c.accounts[addr]; found {
		return account.balance != (sim.Value{}) || account.nonce != 0 || len(account.code) != 0
	}
	return c.base.AccountExists(addr)
}

func (c *transactionContext) GetBalance(addr sim.Address) sim.Value {
	if account, found := c.accounts[addr]; found {
		return account.balance
	}
	return c.base.GetBalance(addr)
}

func (c *transactionContext) SetBalance(addr sim.Address, value sim.Value) {
	account := c.touch(addr)
	original := account.balance
	account.balance = value
	c.undo = append(c.undo, func() { account.balance = original })
}

func (c *transactionContext) GetNonce(addr sim.Address) uint64 {
	if account, found := c.accounts[addr]; found {
		return account.nonce
	}
	return c.base.GetNonce(addr)
}

func (c *transactionContext) SetNonce(addr sim.Address, nonce uint64) {
	account := c.touch(addr)
	original := account.nonce
	account.nonce = nonce
	c.undo = append(c.undo, func() { account.nonce = original })
}

func (c *transactionContext) GetCode(addr sim.Address) sim.Code {
	if account, found := c.accounts[addr]; found {
		return sim.Code(bytes.Clone(account.code))
	}
	return c.base.GetCode(addr)
}

func (c *transactionContext) GetCodeHash(addr sim.Address) sim.Hash {
	if account, found := c.accounts[addr]; found && account.codeDirty {
		return keccak256(account.code)
	}
	return c.base.GetCodeHash(addr)
}

func (c *transactionContext) GetCodeSize(addr sim.Address) int {
	if account, found := c.accounts[addr]; found {
		return len(account.code)
	}
	return c.base.GetCodeSize(addr)
}

func (c *transactionContext) SetCode(addr sim.Address, code sim.Code) {
	account := c.touch(addr)
	originalCode := account.code
	originalDirty := account.codeDirty
	account.code = sim.Code(bytes.Clone(code))
	account.codeDirty = true
	c.undo = append(c.undo, func() {
		account.code = originalCode
		account.codeDirty = originalDirty
	})
}

func (c *transactionContext) GetStorage(addr sim.Address, key sim.Key) sim.Word {
	if account, found := c.accounts[addr]; found {
		if value, found := account.storage[key]; found {
			return value
		}
	}
	return c.base.GetStorage(addr, key)
}

func (c *transactionContext) SetStorage(addr sim.Address, key sim.Key, value sim.Word) {
	account := c.touch(addr)
	original, existed := account.storage[key]
	account.storage[key] = value
	c.undo = append(c.undo, func() {
		if existed {
			account.storage[key] = original
		} else {
			delete(account.storage, key)
		}
	})
}

func (c *transactionContext) CreateSnapshot() sim.Snapshot {
	return sim.Snapshot(len(c.undo))
}

func (c *transactionContext) RestoreSnapshot(snapshot sim.Snapshot) {
	for len(c.undo) > int(snapshot) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

func (c *transactionContext) EmitLog(log sim.Log) {
	length := len(c.logs)
	c.logs = append(c.logs, log)
	c.undo = append(c.undo, func() { c.logs = c.logs[:length] })
}

func (c *transactionContext) GetLogs() []sim.Log {
	return slices.Clone(c.logs)
}

// diff extracts the buffered mutations as a state diff, skipping attributes
// that ended up unchanged compared to the underlying state.
func (c *transactionContext) diff() sim.StateDiff {
	diff := sim.StateDiff{}
	for addr, account := range c.accounts {
		delta := sim.AccountDelta{}
		if balance := account.balance; balance != c.base.GetBalance(addr) {
			delta.Balance = &balance
		}
		if nonce := account.nonce; nonce != c.base.GetNonce(addr) {
			delta.Nonce = &nonce
		}
		if account.codeDirty && !bytes.Equal(account.code, c.base.GetCode(addr)) {
			delta.Code = sim.Code(bytes.Clone(account.code))
		}
		for key, value := range account.storage {
			if value == c.base.GetStorage(addr, key) {
				continue
			}
			if delta.Storage == nil {
				delta.Storage = map[sim.Key]sim.Word{}
			}
			delta.Storage[key] = value
		}
		if !delta.Empty() {
			diff[addr] = delta
		}
	}
	return diff
}

func keccak256(data []byte) (hash sim.Hash) {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	copy(hash[:], hasher.Sum(nil))
	return
}

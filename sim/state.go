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

//go:generate mockgen -source state.go -destination state_mock.go -package sim

// StateReader is a read-only projection of the simulated chain state. It is
// the only view handed to agents and execution backends; mutations go
// exclusively through the owning environment's apply path. Absent accounts
// read as zero balance, zero nonce, and empty code.
type StateReader interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	GetNonce(Address) uint64
	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	GetStorage(Address, Key) Word
}

// StateDiff describes the complete set of account mutations produced by the
// execution of a single transaction. A diff is applied to a state store
// atomically; a transaction that failed or reverted yields an empty diff.
type StateDiff map[Address]AccountDelta

// AccountDelta captures the changes to a single account. Nil pointer fields
// mark attributes that are left untouched; a nil Storage map means no slots
// changed. Code is only present for newly deployed contracts.
type AccountDelta struct {
	Balance *Value
	Nonce   *uint64
	Code    Code
	Storage map[Key]Word
}

// Empty reports whether the delta carries no changes at all.
func (d AccountDelta) Empty() bool {
	return d.Balance == nil && d.Nonce == nil && d.Code == nil && len(d.Storage) == 0
}

// StorageEntry is a single (slot, value) pair used when force-installing
// contract state snapshots.
type StorageEntry struct {
	Key   Key
	Value Word
}

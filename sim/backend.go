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

//go:generate mockgen -source backend.go -destination backend_mock.go -package sim

// Backend is a component capable of executing complete transactions against
// a snapshot of the simulated chain state. It is a pure function of
// (state, transaction): it never mutates the provided state but returns the
// mutations as a StateDiff for the environment to apply atomically. A
// transaction that did not end in StatusSuccess must yield an empty diff.
//
// Malformed transactions (nonce mismatch, insufficient balance, unknown
// recipient code) are reported through the Result status, not through the
// error return. A non-nil error indicates a backend-internal problem.
type Backend interface {
	Execute(block BlockInfo, tx Transaction, state StateReader) (Result, StateDiff, error)
}

// BackendFactory is the type of a function creating a Backend on top of the
// given interpreter. The interpreter may be nil for backends that only need
// to support plain value transfers.
type BackendFactory func(Interpreter) Backend

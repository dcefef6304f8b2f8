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

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package sim

// Interpreter is the black-box opcode engine consumed by execution backends.
// It executes the byte-code of a single contract frame; transaction-level
// concerns like nonce handling, gas purchase, and diff collection are the
// backend's job. The resulting error is nil whenever the code was correctly
// processed, even if the execution itself ended in a revert; a non-nil error
// indicates an interpreter-internal problem and renders the result undefined.
type Interpreter interface {
	Run(Parameters) (InterpreterResult, error)
}

// Parameters summarizes the list of input parameters required for executing
// a single code frame.
type Parameters struct {
	Block     BlockInfo
	Context   FrameContext
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       Gas
	Recipient Address
	Sender    Address
	Origin    Address
	GasPrice  Value
	Input     Data
	Value     Value
	CodeHash  *Hash
	Code      Code
}

// FrameContext provides the state access and mutation operations individual
// instructions need. It is implemented by the backend's buffered transaction
// context; all writes stay buffered until the resulting diff is applied.
type FrameContext interface {
	StateReader

	SetBalance(Address, Value)
	SetNonce(Address, uint64)
	SetCode(Address, Code)
	SetStorage(Address, Key, Word)

	CreateSnapshot() Snapshot
	RestoreSnapshot(Snapshot)

	EmitLog(Log)
	GetLogs() []Log
}

// InterpreterResult summarizes the result of an interpreter run.
type InterpreterResult struct {
	Success bool // false if the execution ended in a revert, true otherwise
	Output  Data
	GasLeft Gas
}

// Snapshot is a type used to represent a snapshot of the buffered state in a
// transaction context.
type Snapshot int

// CallKind is an enum enabling the differentiation of the different types of
// contract invocations.
type CallKind int

const (
	Call CallKind = iota
	Create
)

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

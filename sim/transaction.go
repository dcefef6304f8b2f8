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

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Transaction summarizes the parameters of a transaction to be executed
// against the simulated chain state. Instances are immutable once submitted
// to an Environment.
type Transaction struct {
	Sender    Address  // the sender of the transaction, paying for its execution
	Recipient *Address // the receiver of the transaction, nil if a new contract is to be created
	Nonce     uint64   // the nonce of the sender account, assigned by the environment at submission
	Input     Data     // calldata, or the initialization code for contract creations
	Value     Value    // the amount of simulated currency to transfer to the recipient
	GasLimit  Gas      // the maximum amount of gas that can be used by the transaction
	GasPrice  Value    // the effective price of a unit of gas for this transaction
}

// Status describes the outcome of processing a transaction. Reverted and
// Failed transactions are ordinary results an agent can react to; they never
// terminate a simulation run.
type Status int

const (
	// StatusSuccess marks a transaction that executed completely and whose
	// state changes have been committed.
	StatusSuccess Status = iota
	// StatusReverted marks a transaction whose execution ended in a revert;
	// no state changes have been committed.
	StatusReverted
	// StatusFailed marks a transaction that was rejected before or during
	// execution (bad nonce, insufficient balance, malformed request); no
	// state changes have been committed.
	StatusFailed
	// StatusForced marks an execution-log entry produced by installing
	// account state directly, bypassing transaction execution entirely.
	StatusForced
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusReverted:
		return "reverted"
	case StatusFailed:
		return "failed"
	case StatusForced:
		return "forced"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case StatusSuccess, StatusReverted, StatusFailed, StatusForced:
		return json.Marshal(s.String())
	default:
		return nil, fmt.Errorf("invalid status: %d", s)
	}
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var status string
	if err := json.Unmarshal(data, &status); err != nil {
		return err
	}
	switch strings.ToLower(status) {
	case "success":
		*s = StatusSuccess
	case "reverted":
		*s = StatusReverted
	case "failed":
		*s = StatusFailed
	case "forced":
		*s = StatusForced
	default:
		return fmt.Errorf("unknown status: %s", status)
	}
	return nil
}

// Result summarizes the outcome of the execution of a transaction. It is
// produced exactly once per transaction and immutable afterwards.
type Result struct {
	Status          Status   // the execution outcome
	Output          Data     // the output produced by the transaction
	ContractAddress *Address // filled if a contract was created by this transaction
	GasUsed         Gas      // gas consumed by the execution
	Logs            []Log    // logs produced by the transaction, in emission order
}

// Log is the type summarizing a log message emitted as a side effect of a
// contract execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

// BlockInfo describes the simulated block context transactions observe. One
// simulation step corresponds to one block; the environment fills Number
// with its step counter before each submission.
type BlockInfo struct {
	ChainID   Word
	Number    int64
	Timestamp int64
	Coinbase  Address
	GasLimit  Gas
	BaseFee   Value
}

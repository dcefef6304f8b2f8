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
	"errors"
	"fmt"

	"github.com/arena-sim/arena/sim"
)

const (
	TxGas                 = 21_000
	TxGasContractCreation = 53_000
	TxDataNonZeroGas      = 16
	TxDataZeroGas         = 4

	// createDataGas is charged per byte of deployed contract code.
	createDataGas = 200

	// maxCodeSize is the EIP-170 limit for deployed contract code.
	maxCodeSize = 24576
)

func init() {
	sim.RegisterBackendFactory("arena", NewBackend)
}

// NewBackend creates the default transaction-level execution backend. It
// handles gas purchase, nonce checking, value transfers, and contract
// creation itself and delegates opcode execution to the given interpreter.
// The interpreter may be nil; in that case only transactions touching
// code-less accounts can be executed.
func NewBackend(interpreter sim.Interpreter) sim.Backend {
	return &backend{interpreter: interpreter}
}

type backend struct {
	interpreter sim.Interpreter
}

var (
	errInsufficientBalance = errors.New("insufficient balance")
	errNonceMismatch       = errors.New("nonce mismatch")
	errNoInterpreter       = errors.New("no interpreter configured")
	errAddressCollision    = errors.New("contract address collision")
	errCodeSizeExceeded    = errors.New("max code size exceeded")
)

func (b *backend) Execute(
	block sim.BlockInfo,
	tx sim.Transaction,
	state sim.StateReader,
) (sim.Result, sim.StateDiff, error) {
	failedResult := sim.Result{
		Status:  sim.StatusFailed,
		GasUsed: tx.GasLimit,
	}
	ctxt := newTransactionContext(state)

	gas := tx.GasLimit
	if err := buyGas(tx, ctxt); err != nil {
		return failedResult, nil, nil
	}

	intrinsicGas := intrinsicGas(tx)
	if gas < intrinsicGas {
		return failedResult, nil, nil
	}
	gas -= intrinsicGas

	if err := handleNonce(tx, ctxt); err != nil {
		return failedResult, nil, nil
	}

	var result sim.InterpreterResult
	var createdAddress *sim.Address
	var err error

	if tx.Recipient == nil {
		result, createdAddress, err = b.create(block, tx, ctxt, gas)
	} else {
		result, err = b.call(block, tx, ctxt, gas)
	}
	if err != nil {
		// Execution-level failures are data, only interpreter-internal
		// problems are propagated as errors.
		if isExecutionFailure(err) {
			return failedResult, nil, nil
		}
		return failedResult, nil, err
	}

	refundGas(tx, ctxt, result.GasLeft)
	gasUsed := tx.GasLimit - result.GasLeft

	if !result.Success {
		return sim.Result{
			Status:  sim.StatusReverted,
			Output:  result.Output,
			GasUsed: gasUsed,
		}, nil, nil
	}

	return sim.Result{
		Status:          sim.StatusSuccess,
		Output:          result.Output,
		ContractAddress: createdAddress,
		GasUsed:         gasUsed,
		Logs:            ctxt.GetLogs(),
	}, ctxt.diff(), nil
}

func isExecutionFailure(err error) bool {
	return errors.Is(err, errInsufficientBalance) ||
		errors.Is(err, errNoInterpreter) ||
		errors.Is(err, errAddressCollision) ||
		errors.Is(err, errCodeSizeExceeded)
}

// intrinsicGas computes the gas charged before any code execution starts.
func intrinsicGas(tx sim.Transaction) sim.Gas {
	var gas sim.Gas
	if tx.Recipient == nil {
		gas = TxGasContractCreation
	} else {
		gas = TxGas
	}

	if len(tx.Input) > 0 {
		nonZeroBytes := sim.Gas(0)
		for _, inputByte := range tx.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := sim.Gas(len(tx.Input)) - nonZeroBytes
		gas += zeroBytes * TxDataZeroGas
		gas += nonZeroBytes * TxDataNonZeroGas
	}

	return gas
}

func handleNonce(tx sim.Transaction, ctxt *transactionContext) error {
	stateNonce := ctxt.GetNonce(tx.Sender)
	if tx.Nonce != stateNonce {
		return fmt.Errorf("%w: %v != %v", errNonceMismatch, tx.Nonce, stateNonce)
	}
	ctxt.SetNonce(tx.Sender, stateNonce+1)
	return nil
}

func buyGas(tx sim.Transaction, ctxt *transactionContext) error {
	gas := tx.GasPrice.Scale(uint64(tx.GasLimit))

	senderBalance := ctxt.GetBalance(tx.Sender)
	if senderBalance.Cmp(gas) < 0 {
		return fmt.Errorf("%w: %v < %v", errInsufficientBalance, senderBalance, gas)
	}

	ctxt.SetBalance(tx.Sender, sim.Sub(senderBalance, gas))
	return nil
}

func refundGas(tx sim.Transaction, ctxt *transactionContext, gasLeft sim.Gas) {
	if gasLeft <= 0 {
		return
	}
	refund := tx.GasPrice.Scale(uint64(gasLeft))
	senderBalance := ctxt.GetBalance(tx.Sender)
	ctxt.SetBalance(tx.Sender, sim.Add(senderBalance, refund))
}

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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arena-sim/arena/sim"
)

// call executes an ordinary calldata dispatch to an existing account. For
// accounts without code this degenerates to a plain value transfer.
func (b *backend) call(
	block sim.BlockInfo,
	tx sim.Transaction,
	ctxt *transactionContext,
	gas sim.Gas,
) (sim.InterpreterResult, error) {
	recipient := *tx.Recipient

	snapshot := ctxt.CreateSnapshot()
	if err := transferValue(tx.Sender, recipient, tx.Value, ctxt); err != nil {
		ctxt.RestoreSnapshot(snapshot)
		return sim.InterpreterResult{}, err
	}

	code := ctxt.GetCode(recipient)
	if len(code) == 0 {
		return sim.InterpreterResult{Success: true, GasLeft: gas}, nil
	}
	if b.interpreter == nil {
		ctxt.RestoreSnapshot(snapshot)
		return sim.InterpreterResult{}, fmt.Errorf("%w: cannot call contract %v", errNoInterpreter, recipient)
	}

	codeHash := ctxt.GetCodeHash(recipient)
	params := sim.Parameters{
		Block:     block,
		Context:   ctxt,
		Kind:      sim.Call,
		Depth:     0,
		Gas:       gas,
		Recipient: recipient,
		Sender:    tx.Sender,
		Origin:    tx.Sender,
		GasPrice:  tx.GasPrice,
		Input:     tx.Input,
		Value:     tx.Value,
		CodeHash:  &codeHash,
		Code:      code,
	}

	result, err := b.interpreter.Run(params)
	if err != nil || !result.Success {
		ctxt.RestoreSnapshot(snapshot)
	}
	return result, err
}

// create deploys a new contract. The address is derived deterministically
// from the sender and its nonce, the initialization code is executed, and
// its output becomes the code of the new account.
func (b *backend) create(
	block sim.BlockInfo,
	tx sim.Transaction,
	ctxt *transactionContext,
	gas sim.Gas,
) (sim.InterpreterResult, *sim.Address, error) {
	createdAddress := deriveCreateAddress(tx.Sender, tx.Nonce)

	if ctxt.GetCodeSize(createdAddress) != 0 || ctxt.GetNonce(createdAddress) != 0 {
		return sim.InterpreterResult{}, nil, fmt.Errorf("%w: %v", errAddressCollision, createdAddress)
	}

	snapshot := ctxt.CreateSnapshot()
	if err := transferValue(tx.Sender, createdAddress, tx.Value, ctxt); err != nil {
		ctxt.RestoreSnapshot(snapshot)
		return sim.InterpreterResult{}, nil, err
	}
	ctxt.SetNonce(createdAddress, 1)

	result := sim.InterpreterResult{Success: true, GasLeft: gas}
	if len(tx.Input) > 0 {
		if b.interpreter == nil {
			ctxt.RestoreSnapshot(snapshot)
			return sim.InterpreterResult{}, nil, fmt.Errorf("%w: cannot deploy contract", errNoInterpreter)
		}

		params := sim.Parameters{
			Block:     block,
			Context:   ctxt,
			Kind:      sim.Create,
			Depth:     0,
			Gas:       gas,
			Recipient: createdAddress,
			Sender:    tx.Sender,
			Origin:    tx.Sender,
			GasPrice:  tx.GasPrice,
			Input:     nil,
			Value:     tx.Value,
			Code:      sim.Code(tx.Input),
		}

		var err error
		result, err = b.interpreter.Run(params)
		if err != nil || !result.Success {
			ctxt.RestoreSnapshot(snapshot)
			return result, nil, err
		}
	}

	if len(result.Output) > maxCodeSize {
		ctxt.RestoreSnapshot(snapshot)
		return sim.InterpreterResult{}, nil, fmt.Errorf("%w: %d bytes", errCodeSizeExceeded, len(result.Output))
	}
	codeDepositGas := sim.Gas(len(result.Output)) * createDataGas
	if result.GasLeft < codeDepositGas {
		ctxt.RestoreSnapshot(snapshot)
		return sim.InterpreterResult{Success: false}, nil, nil
	}
	result.GasLeft -= codeDepositGas

	ctxt.SetCode(createdAddress, sim.Code(result.Output))
	return result, &createdAddress, nil
}

func transferValue(from, to sim.Address, value sim.Value, ctxt *transactionContext) error {
	senderBalance := ctxt.GetBalance(from)
	if senderBalance.Cmp(value) < 0 {
		return fmt.Errorf("%w: %v < %v", errInsufficientBalance, senderBalance, value)
	}

	ctxt.SetBalance(from, sim.Sub(senderBalance, value))
	receiverBalance := ctxt.GetBalance(to)
	ctxt.SetBalance(to, sim.Add(receiverBalance, value))
	return nil
}

// deriveCreateAddress computes the address of a contract deployed by the
// given sender with the given nonce, matching Ethereum's CREATE semantics.
func deriveCreateAddress(sender sim.Address, nonce uint64) sim.Address {
	return sim.Address(crypto.CreateAddress(common.Address(sender), nonce))
}

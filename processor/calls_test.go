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
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/arena-sim/arena/sim"
	"github.com/arena-sim/arena/state"
)

func TestDeriveCreateAddress_IsDeterministicAndNonceSensitive(t *testing.T) {
	sender := sim.Address{1}
	if want, got := deriveCreateAddress(sender, 0), deriveCreateAddress(sender, 0); want != got {
		t.Errorf("address derivation is not deterministic: %v != %v", want, got)
	}
	if deriveCreateAddress(sender, 0) == deriveCreateAddress(sender, 1) {
		t.Errorf("different nonces must yield different addresses")
	}
	if deriveCreateAddress(sim.Address{1}, 0) == deriveCreateAddress(sim.Address{2}, 0) {
		t.Errorf("different senders must yield different addresses")
	}
}

func TestBackend_CreateInstallsConstructorOutputAsCode(t *testing.T) {
	sender := sim.Address{1}
	deployedCode := sim.Data{0xca, 0xfe}

	ctrl := gomock.NewController(t)
	interpreter := sim.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(params sim.Parameters) (sim.InterpreterResult, error) {
		if want, got := sim.Create, params.Kind; want != got {
			t.Errorf("unexpected call kind, wanted %v, got %v", want, got)
		}
		if len(params.Input) != 0 {
			t.Errorf("init code must run with empty input, got 0x%x", params.Input)
		}
		return sim.InterpreterResult{Success: true, Output: deployedCode, GasLeft: params.Gas}, nil
	})

	store := state.NewStore()
	store.SetBalance(sender, sim.NewValue(1000))

	backend := NewBackend(interpreter)
	result, diff, err := backend.Execute(sim.BlockInfo{}, sim.Transaction{
		Sender:   sender,
		Input:    sim.Data{0x60, 0x00},
		GasLimit: TxGasContractCreation + 10_000,
	}, store)
	if err != nil {
		t.Fatalf("failed to execute transaction: %v", err)
	}
	if want, got := sim.StatusSuccess, result.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	if result.ContractAddress == nil {
		t.Fatalf("no contract address assigned")
	}
	if want, got := deriveCreateAddress(sender, 0), *result.ContractAddress; want != got {
		t.Errorf("unexpected contract address, wanted %v, got %v", want, got)
	}

	if err := store.Apply(diff); err != nil {
		t.Fatalf("failed to apply diff: %v", err)
	}
	if want, got := sim.Code(deployedCode), store.GetCode(*result.ContractAddress); string(want) != string(got) {
		t.Errorf("unexpected deployed code, wanted 0x%x, got 0x%x", want, got)
	}
	if want, got := uint64(1), store.GetNonce(*result.ContractAddress); want != got {
		t.Errorf("unexpected contract nonce, wanted %d, got %d", want, got)
	}
}

func TestBackend_RevertingConstructorInstallsNothing(t *testing.T) {
	sender := sim.Address{1}

	ctrl := gomock.NewController(t)
	interpreter := sim.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).Return(sim.InterpreterResult{Success: false}, nil)

	store := state.NewStore()
	store.SetBalance(sender, sim.NewValue(1000))
	before := store.Clone()

	backend := NewBackend(interpreter)
	result, diff, err := backend.Execute(sim.BlockInfo{}, sim.Transaction{
		Sender:   sender,
		Input:    sim.Data{0x60, 0x00},
		Value:    sim.NewValue(5),
		GasLimit: TxGasContractCreation + 10_000,
	}, store)
	if err != nil {
		t.Fatalf("failed to execute transaction: %v", err)
	}
	if want, got := sim.StatusReverted, result.Status; want != got {
		t.Errorf("unexpected status, wanted %v, got %v", want, got)
	}
	if result.ContractAddress != nil {
		t.Errorf("reverted creation must not assign an address, got %v", result.ContractAddress)
	}
	if len(diff) != 0 {
		t.Errorf("reverted creation produced a diff: %v", diff)
	}
	if !store.Equal(before) {
		t.Errorf("execution modified the underlying store")
	}
}

func TestBackend_CreateWithEmptyInitCodeNeedsNoInterpreter(t *testing.T) {
	sender := sim.Address{1}
	store := state.NewStore()
	store.SetBalance(sender, sim.NewValue(1000))

	backend := NewBackend(nil)
	result, diff, err := backend.Execute(sim.BlockInfo{}, sim.Transaction{
		Sender:   sender,
		Value:    sim.NewValue(10),
		GasLimit: TxGasContractCreation,
	}, store)
	if err != nil {
		t.Fatalf("failed to execute transaction: %v", err)
	}
	if want, got := sim.StatusSuccess, result.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}

	if err := store.Apply(diff); err != nil {
		t.Fatalf("failed to apply diff: %v", err)
	}
	if want, got := sim.NewValue(10), store.GetBalance(*result.ContractAddress); want != got {
		t.Errorf("unexpected balance of created account, wanted %v, got %v", want, got)
	}
}

func TestBackend_CreateAddressCollisionFails(t *testing.T) {
	sender := sim.Address{1}
	store := state.NewStore()
	store.SetBalance(sender, sim.NewValue(1000))
	store.SetCode(deriveCreateAddress(sender, 0), sim.Code{0x01})

	backend := NewBackend(nil)
	result, diff, err := backend.Execute(sim.BlockInfo{}, sim.Transaction{
		Sender:   sender,
		GasLimit: TxGasContractCreation,
	}, store)
	if err != nil {
		t.Fatalf("collision should be reported as result data: %v", err)
	}
	if want, got := sim.StatusFailed, result.Status; want != got {
		t.Errorf("unexpected status, wanted %v, got %v", want, got)
	}
	if len(diff) != 0 {
		t.Errorf("failed creation produced a diff: %v", diff)
	}
}

func TestTransferValue_MovesFundsBetweenAccounts(t *testing.T) {
	store := state.NewStore()
	store.SetBalance(sim.Address{1}, sim.NewValue(100))
	ctxt := newTransactionContext(store)

	if err := transferValue(sim.Address{1}, sim.Address{2}, sim.NewValue(30), ctxt); err != nil {
		t.Fatalf("failed to transfer value: %v", err)
	}
	if want, got := sim.NewValue(70), ctxt.GetBalance(sim.Address{1}); want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want, got)
	}
	if want, got := sim.NewValue(30), ctxt.GetBalance(sim.Address{2}); want != got {
		t.Errorf("unexpected receiver balance, wanted %v, got %v", want, got)
	}

	if err := transferValue(sim.Address{1}, sim.Address{2}, sim.NewValue(1000), ctxt); err == nil {
		t.Errorf("transfer exceeding the balance should fail")
	}
}

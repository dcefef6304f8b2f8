// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"errors"
	"strings"
	"testing"

	"github.com/arena-sim/arena/sim"
)

func TestStore_AbsentAccountsReadAsDefaults(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}

	if store.AccountExists(addr) {
		t.Errorf("absent account should not exist")
	}
	if want, got := (sim.Value{}), store.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(0), store.GetNonce(addr); want != got {
		t.Errorf("unexpected nonce, wanted %v, got %v", want, got)
	}
	if got := store.GetCode(addr); len(got) != 0 {
		t.Errorf("unexpected code, wanted empty, got 0x%x", got)
	}
	if want, got := (sim.Word{}), store.GetStorage(addr, sim.Key{2}); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
}

func TestStore_AccountsAreCreatedLazily(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}

	store.SetBalance(addr, sim.NewValue(100))
	if !store.AccountExists(addr) {
		t.Errorf("account should exist after balance assignment")
	}
	if want, got := sim.NewValue(100), store.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
}

func TestStore_ForcedStateRoundTrip(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}
	code := sim.Code{0x60, 0x00}
	key := sim.Key{7}
	value := sim.Word{31: 42}

	store.SetCode(addr, code)
	store.SetStorage(addr, key, value)

	if want, got := code, store.GetCode(addr); string(want) != string(got) {
		t.Errorf("unexpected code, wanted 0x%x, got 0x%x", want, got)
	}
	if want, got := len(code), store.GetCodeSize(addr); want != got {
		t.Errorf("unexpected code size, wanted %d, got %d", want, got)
	}
	if want, got := value, store.GetStorage(addr, key); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}

	// Zero writes remove the slot again.
	store.SetStorage(addr, key, sim.Word{})
	if want, got := (sim.Word{}), store.GetStorage(addr, key); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
}

func TestStore_CodeHashTracksInstalledCode(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}

	emptyHash := store.GetCodeHash(addr)
	if want, got := emptyHash, store.GetCodeHash(addr); want != got {
		t.Errorf("hash lookup is not stable, wanted %v, got %v", want, got)
	}

	store.SetCode(addr, sim.Code{0x01})
	updatedHash := store.GetCodeHash(addr)
	if emptyHash == updatedHash {
		t.Errorf("hash did not change after code installation")
	}
	if want, got := keccak256([]byte{0x01}), updatedHash; want != got {
		t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
	}
}

func TestStore_ApplyInstallsAllChanges(t *testing.T) {
	store := NewStore()
	sender := sim.Address{1}
	receiver := sim.Address{2}
	store.SetBalance(sender, sim.NewValue(100))

	senderBalance := sim.NewValue(50)
	receiverBalance := sim.NewValue(50)
	nonce := uint64(1)
	diff := sim.StateDiff{
		sender:   {Balance: &senderBalance, Nonce: &nonce},
		receiver: {Balance: &receiverBalance, Storage: map[sim.Key]sim.Word{{1}: {31: 9}}},
	}

	if err := store.Apply(diff); err != nil {
		t.Fatalf("failed to apply diff: %v", err)
	}

	if want, got := sim.NewValue(50), store.GetBalance(sender); want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(1), store.GetNonce(sender); want != got {
		t.Errorf("unexpected sender nonce, wanted %v, got %v", want, got)
	}
	if want, got := sim.NewValue(50), store.GetBalance(receiver); want != got {
		t.Errorf("unexpected receiver balance, wanted %v, got %v", want, got)
	}
	if want, got := (sim.Word{31: 9}), store.GetStorage(receiver, sim.Key{1}); want != got {
		t.Errorf("unexpected storage value, wanted %v, got %v", want, got)
	}
	if want, got := uint64(1), store.Commits(); want != got {
		t.Errorf("unexpected commit count, wanted %d, got %d", want, got)
	}
}

func TestStore_ApplyRejectsNonceDecreaseWithoutPartialApplication(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}
	other := sim.Address{2}
	store.SetNonce(addr, 5)
	before := store.Clone()

	lowNonce := uint64(4)
	balance := sim.NewValue(10)
	diff := sim.StateDiff{
		other: {Balance: &balance},
		addr:  {Nonce: &lowNonce},
	}

	err := store.Apply(diff)
	if !errors.Is(err, sim.ErrStateCorruption) {
		t.Fatalf("expected state corruption error, got %v", err)
	}
	if !store.Equal(before) {
		t.Errorf("rejected diff modified the store:\n\t%v", strings.Join(store.Diff(before), "\n\t"))
	}
	if want, got := uint64(0), store.Commits(); want != got {
		t.Errorf("rejected diff must not count as commit, got %d", got)
	}
}

func TestStore_ApplyRejectsCodeReplacement(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}
	store.SetCode(addr, sim.Code{0x01})

	err := store.Apply(sim.StateDiff{addr: {Code: sim.Code{0x02}}})
	if !errors.Is(err, sim.ErrStateCorruption) {
		t.Fatalf("expected state corruption error, got %v", err)
	}

	// Re-installing the identical code is tolerated.
	if err := store.Apply(sim.StateDiff{addr: {Code: sim.Code{0x01}}}); err != nil {
		t.Fatalf("identical code re-install should pass: %v", err)
	}
}

func TestStore_ForcedCodeOverwriteIsPermitted(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}
	store.SetCode(addr, sim.Code{0x01})
	store.SetCode(addr, sim.Code{0x02})
	if want, got := (sim.Code{0x02}), store.GetCode(addr); string(want) != string(got) {
		t.Errorf("unexpected code, wanted 0x%x, got 0x%x", want, got)
	}
	if want, got := keccak256([]byte{0x02}), store.GetCodeHash(addr); want != got {
		t.Errorf("code hash not refreshed after forced overwrite")
	}
}

func TestStore_CloneSharesNoData(t *testing.T) {
	store := NewStore()
	addr := sim.Address{1}
	store.SetBalance(addr, sim.NewValue(100))
	store.SetStorage(addr, sim.Key{1}, sim.Word{31: 1})

	clone := store.Clone()
	if !store.Equal(clone) {
		t.Fatalf("clone differs from original:\n\t%v", strings.Join(store.Diff(clone), "\n\t"))
	}

	clone.SetBalance(addr, sim.NewValue(7))
	clone.SetStorage(addr, sim.Key{1}, sim.Word{31: 2})
	if store.Equal(clone) {
		t.Errorf("mutating the clone should not affect the original")
	}
	if want, got := sim.NewValue(100), store.GetBalance(addr); want != got {
		t.Errorf("original balance changed, wanted %v, got %v", want, got)
	}
}

func TestStore_EmptyAccountEqualsAbsentAccount(t *testing.T) {
	a := NewStore()
	b := NewStore()
	a.SetBalance(sim.Address{1}, sim.Value{})
	if !a.Equal(b) {
		t.Errorf("account with all-zero fields should compare equal to an absent account")
	}
}

func TestStore_DiffNamesChangedAttributes(t *testing.T) {
	a := NewStore()
	b := NewStore()
	a.SetBalance(sim.Address{1}, sim.NewValue(1))
	b.SetNonce(sim.Address{1}, 2)

	diff := strings.Join(a.Diff(b), "\n")
	if !strings.Contains(diff, "balance") || !strings.Contains(diff, "nonce") {
		t.Errorf("diff misses changed attributes: %v", diff)
	}
}

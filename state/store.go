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
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"

	"github.com/arena-sim/arena/sim"
)

// codeHashCacheSize bounds the number of cached code hashes. Simulations
// typically touch far fewer contracts than this.
const codeHashCacheSize = 1024

// Store is the in-memory ledger of the simulated chain: a mapping from
// addresses to account records. Accounts are created lazily on their first
// balance, nonce, code, or storage assignment. A Store is exclusively owned
// by a single environment instance; all mutations triggered by transaction
// execution go through Apply, while the Set* primitives force-install state
// without going through execution at all.
type Store struct {
	accounts   map[sim.Address]*Account
	commits    uint64
	codeHashes *lru.Cache[sim.Address, sim.Hash]
}

// Account is the record kept per address: balance, nonce, optional contract
// code, and the storage written by that contract. Zero-valued storage slots
// are not represented.
type Account struct {
	Balance sim.Value
	Nonce   uint64
	Code    sim.Code
	Storage map[sim.Key]sim.Word
}

func NewStore() *Store {
	cache, err := lru.New[sim.Address, sim.Hash](codeHashCacheSize)
	if err != nil {
		panic(fmt.Sprintf("invalid code hash cache size: %v", err))
	}
	return &Store{
		accounts:   map[sim.Address]*Account{},
		codeHashes: cache,
	}
}

func (s *Store) AccountExists(addr sim.Address) bool {
	account, found := s.accounts[addr]
	if !found {
		return false
	}
	return account.Balance != (sim.Value{}) || account.Nonce != 0 || len(account.Code) != 0
}

func (s *Store) GetBalance(addr sim.Address) sim.Value {
	if account, found := s.accounts[addr]; found {
		return account.Balance
	}
	return sim.Value{}
}

func (s *Store) GetNonce(addr sim.Address) uint64 {
	if account, found := s.accounts[addr]; found {
		return account.Nonce
	}
	return 0
}

func (s *Store) GetCode(addr sim.Address) sim.Code {
	if account, found := s.accounts[addr]; found {
		return sim.Code(bytes.Clone(account.Code))
	}
	return nil
}

func (s *Store) GetCodeHash(addr sim.Address) sim.Hash {
	if hash, found := s.codeHashes.Get(addr); found {
		return hash
	}
	hash := keccak256(s.GetCode(addr))
	s.codeHashes.Add(addr, hash)
	return hash
}

func (s *Store) GetCodeSize(addr sim.Address) int {
	if account, found := s.accounts[addr]; found {
		return len(account.Code)
	}
	return 0
}

func (s *Store) GetStorage(addr sim.Address, key sim.Key) sim.Word {
	if account, found := s.accounts[addr]; found {
		return account.Storage[key]
	}
	return sim.Word{}
}

// SetBalance force-installs a balance, bypassing transaction execution.
func (s *Store) SetBalance(addr sim.Address, value sim.Value) {
	s.getOrCreate(addr).Balance = value
}

// SetNonce force-installs a nonce, bypassing transaction execution.
func (s *Store) SetNonce(addr sim.Address, nonce uint64) {
	s.getOrCreate(addr).Nonce = nonce
}

// SetCode force-installs contract code, bypassing transaction execution and
// the code-is-set-once invariant enforced by Apply.
func (s *Store) SetCode(addr sim.Address, code sim.Code) {
	s.getOrCreate(addr).Code = sim.Code(bytes.Clone(code))
	s.codeHashes.Remove(addr)
}

// SetStorage force-installs a storage slot, bypassing transaction execution.
// Writing a zero value removes the slot.
func (s *Store) SetStorage(addr sim.Address, key sim.Key, value sim.Word) {
	account := s.getOrCreate(addr)
	if value == (sim.Word{}) {
		delete(account.Storage, key)
		return
	}
	if account.Storage == nil {
		account.Storage = map[sim.Key]sim.Word{}
	}
	account.Storage[key] = value
}

// Commits returns the number of diffs applied to this store so far.
func (s *Store) Commits() uint64 {
	return s.commits
}

// Apply installs the mutation set of a single executed transaction
// atomically. The full diff is validated before the first write, so a
// rejected diff leaves the store untouched. Validation enforces the store's
// invariants: nonces never decrease and contract code, once installed, is
// never replaced through execution.
func (s *Store) Apply(diff sim.StateDiff) error {
	for addr, delta := range diff {
		if delta.Nonce != nil && *delta.Nonce < s.GetNonce(addr) {
			return fmt.Errorf("%w: diff decreases nonce of %v from %d to %d",
				sim.ErrStateCorruption, addr, s.GetNonce(addr), *delta.Nonce)
		}
		if delta.Code != nil && s.GetCodeSize(addr) != 0 && !bytes.Equal(delta.Code, s.GetCode(addr)) {
			return fmt.Errorf("%w: diff replaces code of %v", sim.ErrStateCorruption, addr)
		}
	}

	for addr, delta := range diff {
		account := s.getOrCreate(addr)
		if delta.Balance != nil {
			account.Balance = *delta.Balance
		}
		if delta.Nonce != nil {
			account.Nonce = *delta.Nonce
		}
		if delta.Code != nil {
			account.Code = sim.Code(bytes.Clone(delta.Code))
			s.codeHashes.Remove(addr)
		}
		for key, value := range delta.Storage {
			s.SetStorage(addr, key, value)
		}
	}

	s.commits++
	return nil
}

func (s *Store) getOrCreate(addr sim.Address) *Account {
	if account, found := s.accounts[addr]; found {
		return account
	}
	account := &Account{}
	s.accounts[addr] = account
	return account
}

func keccak256(data []byte) (hash sim.Hash) {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	copy(hash[:], hasher.Sum(nil))
	return
}

// Clone creates a deep copy of the store sharing no mutable data with the
// original. The commit counter is copied as well.
func (s *Store) Clone() *Store {
	res := NewStore()
	res.commits = s.commits
	for addr, account := range s.accounts {
		res.accounts[addr] = &Account{
			Balance: account.Balance,
			Nonce:   account.Nonce,
			Code:    sim.Code(bytes.Clone(account.Code)),
			Storage: maps.Clone(account.Storage),
		}
	}
	return res
}

// Equal compares the observable content of two stores, ignoring empty
// accounts, zero-valued storage slots, and the commit counters.
func (s *Store) Equal(other *Store) bool {
	return equalMapsIgnoringZero(s.accounts, other.accounts, func(a, b *Account) bool {
		return a.equal(b)
	})
}

// Diff produces a human-readable list of differences between two stores,
// mainly for test diagnostics.
func (s *Store) Diff(other *Store) []string {
	return diffMaps("", s.accounts, other.accounts, func(addr sim.Address, a, b *Account) []string {
		if a.equal(b) {
			return nil
		}
		return a.diff(fmt.Sprintf("%v/", addr), b)
	})
}

func (a *Account) equal(b *Account) bool {
	if a == nil {
		a = &Account{}
	}
	if b == nil {
		b = &Account{}
	}
	return a.Balance == b.Balance &&
		a.Nonce == b.Nonce &&
		bytes.Equal(a.Code, b.Code) &&
		equalMapsIgnoringZero(a.Storage, b.Storage, func(x, y sim.Word) bool { return x == y })
}

func (a *Account) diff(prefix string, b *Account) []string {
	if a == nil {
		a = &Account{}
	}
	if b == nil {
		b = &Account{}
	}
	var res []string
	if a.Balance != b.Balance {
		res = append(res, fmt.Sprintf("different balance: %v != %v", a.Balance, b.Balance))
	}
	if a.Nonce != b.Nonce {
		res = append(res, fmt.Sprintf("different nonce: %v != %v", a.Nonce, b.Nonce))
	}
	if !bytes.Equal(a.Code, b.Code) {
		res = append(res, fmt.Sprintf("different code: 0x%x != 0x%x", a.Code, b.Code))
	}
	res = append(res, diffMaps("storage/", a.Storage, b.Storage, func(k sim.Key, x, y sim.Word) []string {
		if x == y {
			return nil
		}
		return []string{fmt.Sprintf("different value for key %v: %v != %v", k, x, y)}
	})...)
	for i, diff := range res {
		res[i] = prefix + diff
	}
	return res
}

// equalMapsIgnoringZero compares two maps, ignoring zero-valued entries.
func equalMapsIgnoringZero[K comparable, V any](a, b map[K]V, equal func(V, V) bool) bool {
	for k, v := range a {
		if !equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if !equal(v, a[k]) {
			return false
		}
	}
	return true
}

// diffMaps compares two maps and returns a list of differences.
func diffMaps[K comparable, V any](prefix string, a, b map[K]V, diff func(K, V, V) []string) []string {
	var diffs []string
	for k, v := range a {
		diffs = append(diffs, diff(k, v, b[k])...)
	}
	for k, v := range b {
		if _, overlap := a[k]; !overlap {
			diffs = append(diffs, diff(k, a[k], v)...)
		}
	}
	for i, d := range diffs {
		diffs[i] = prefix + d
	}
	return diffs
}

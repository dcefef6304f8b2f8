// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package archive

import (
	"path/filepath"
	"testing"

	"github.com/arena-sim/arena/sim"
)

func TestRecorder_RecordsSurviveReopening(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")

	recorder, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}

	receiver := sim.Address{2}
	recorder.ObserveResult(0, "alice", sim.Transaction{
		Sender:    sim.Address{1},
		Recipient: &receiver,
		Value:     sim.NewValue(10),
	}, sim.Result{Status: sim.StatusSuccess, GasUsed: 21_000})
	recorder.ObserveResult(1, "", sim.Transaction{
		Sender: sim.Address{3},
	}, sim.Result{Status: sim.StatusReverted, Output: sim.Data{0xde, 0xad}})

	if err := recorder.Close(); err != nil {
		t.Fatalf("failed to close recorder: %v", err)
	}

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if want, got := 2, len(records); want != got {
		t.Fatalf("unexpected number of records, wanted %d, got %d", want, got)
	}

	first := records[0]
	if want, got := uint64(0), first.Sequence; want != got {
		t.Errorf("unexpected sequence, wanted %d, got %d", want, got)
	}
	if want, got := sim.AgentID("alice"), first.Agent; want != got {
		t.Errorf("unexpected agent, wanted %v, got %v", want, got)
	}
	if want, got := sim.NewValue(10), first.Transaction.Value; want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
	if first.Transaction.Recipient == nil || *first.Transaction.Recipient != receiver {
		t.Errorf("unexpected recipient, wanted %v, got %v", receiver, first.Transaction.Recipient)
	}
	if want, got := sim.Gas(21_000), first.Result.GasUsed; want != got {
		t.Errorf("unexpected gas usage, wanted %d, got %d", want, got)
	}

	second := records[1]
	if want, got := sim.StatusReverted, second.Result.Status; want != got {
		t.Errorf("unexpected status, wanted %v, got %v", want, got)
	}
	if want, got := (sim.Data{0xde, 0xad}), second.Result.Output; string(want) != string(got) {
		t.Errorf("unexpected output, wanted 0x%x, got 0x%x", want, got)
	}
}

func TestRecorder_SequenceNumbersKeepExecutionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	recorder, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("failed to create recorder: %v", err)
	}
	for i := 0; i < 300; i++ {
		recorder.ObserveResult(uint64(i), "a", sim.Transaction{}, sim.Result{
			GasUsed: sim.Gas(i),
		})
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("failed to close recorder: %v", err)
	}

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if want, got := 300, len(records); want != got {
		t.Fatalf("unexpected number of records, wanted %d, got %d", want, got)
	}
	for i, record := range records {
		if want, got := uint64(i), record.Sequence; want != got {
			t.Fatalf("records out of order at position %d, got sequence %d", i, got)
		}
		if want, got := sim.Gas(i), record.Result.GasUsed; want != got {
			t.Errorf("unexpected record payload at position %d, wanted %d, got %d", i, want, got)
		}
	}
}

func TestReadAll_MissingArchiveIsReported(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "no-such-archive")); err == nil {
		t.Errorf("reading a missing archive should fail")
	}
}

// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package archive persists the execution log of a simulation run on disk so
// that runs can be inspected and compared after the fact.
package archive

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/arena-sim/arena/sim"
)

// Record is one archived transaction outcome.
type Record struct {
	Sequence    uint64          `json:"sequence"`
	Step        uint64          `json:"step"`
	Agent       sim.AgentID     `json:"agent,omitempty"`
	Transaction sim.Transaction `json:"transaction"`
	Result      sim.Result      `json:"result"`
}

// Recorder is an observer writing every transaction outcome into a LevelDB
// database, keyed by a monotonically increasing sequence number. A Recorder
// is not safe for concurrent use, matching the single-threaded nature of
// the simulation loop feeding it.
type Recorder struct {
	db       *leveldb.DB
	sequence uint64
	err      error
}

// NewRecorder opens (or creates) the archive database at the given path.
// The caller owns the recorder and must close it to flush all records.
func NewRecorder(path string) (*Recorder, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	return &Recorder{db: db}, nil
}

// ObserveResult implements the observer interface. Since observers cannot
// report failures, write errors are retained and surfaced by Close.
func (r *Recorder) ObserveResult(step uint64, agent sim.AgentID, tx sim.Transaction, result sim.Result) {
	if r.err != nil {
		return
	}
	record := Record{
		Sequence:    r.sequence,
		Step:        step,
		Agent:       agent,
		Transaction: tx,
		Result:      result,
	}
	data, err := json.Marshal(record)
	if err != nil {
		r.err = fmt.Errorf("failed to encode record %d: %w", r.sequence, err)
		return
	}
	if err := r.db.Put(sequenceKey(r.sequence), data, nil); err != nil {
		r.err = fmt.Errorf("failed to store record %d: %w", r.sequence, err)
		return
	}
	r.sequence++
}

// Close flushes and closes the underlying database. It reports the first
// write error encountered during the run, if any.
func (r *Recorder) Close() error {
	closeErr := r.db.Close()
	if r.err != nil {
		return r.err
	}
	return closeErr
}

// ReadAll loads all records of an archived run in execution order.
func ReadAll(path string) ([]Record, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfMissing: true,
		ReadOnly:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	defer db.Close()

	var records []Record
	iter := db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %x: %w", iter.Key(), err)
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate archive: %w", err)
	}
	return records, nil
}

// sequenceKey encodes a sequence number such that the database's key order
// matches execution order.
func sequenceKey(sequence uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sequence)
	return key
}

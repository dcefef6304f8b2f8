// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package env

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/arena-sim/arena/sim"
	"github.com/arena-sim/arena/state"
)

// defaultGasLimit is used for transactions submitted without an explicit
// gas limit, generous enough for any simulation workload.
const defaultGasLimit = sim.Gas(10_000_000)

// Environment is the orchestrator of a simulation run. It owns the state
// store, holds the registry of agents, sequences their transactions into a
// single deterministic order, applies them through the execution backend,
// and routes results back to the submitting agents and any observers.
//
// An Environment is strictly single-threaded: Step, Submit, and Run are
// synchronous blocking calls, and no two transactions ever execute
// concurrently against the same store. For parallel parameter sweeps,
// create independent Environment instances sharing nothing.
type Environment struct {
	store      *state.Store
	backend    sim.Backend
	dispatcher Dispatcher
	block      sim.BlockInfo
	logger     *logrus.Logger

	agents map[sim.AgentID]sim.Agent
	roster []sim.AgentID // registration order, defines dispatch order

	steps     uint64
	log       []LogEntry
	observers []sim.Observer
	halt      HaltingCondition
	gasLimit  sim.Gas
}

// LogEntry is one record of the environment's execution log. Entries with
// an empty agent identifier originate from the harness (direct Submit,
// DeployContract, or forced-state loads) rather than from a dispatched
// agent.
type LogEntry struct {
	Step        uint64
	Agent       sim.AgentID
	Transaction sim.Transaction
	Result      sim.Result
}

// HaltingCondition is consulted before each step of a Run; returning true
// stops the run early.
type HaltingCondition func(state sim.StateReader, step uint64) bool

// Option configures an Environment during construction.
type Option func(*Environment)

// WithBlockInfo sets the static block context observed by transactions. The
// block number is overridden with the step counter on every submission.
func WithBlockInfo(block sim.BlockInfo) Option {
	return func(e *Environment) { e.block = block }
}

// WithHaltingCondition installs the predicate that can end a Run early.
func WithHaltingCondition(halt HaltingCondition) Option {
	return func(e *Environment) { e.halt = halt }
}

// WithObserver attaches an observer notified of every execution-log entry.
func WithObserver(observer sim.Observer) Option {
	return func(e *Environment) { e.observers = append(e.observers, observer) }
}

// WithLogger directs diagnostic output to the given logger. Logging is
// purely observational and never influences the simulation.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Environment) { e.logger = logger }
}

// WithDefaultGasLimit overrides the gas limit assigned to transactions
// submitted without one.
func WithDefaultGasLimit(limit sim.Gas) Option {
	return func(e *Environment) { e.gasLimit = limit }
}

// New creates an Environment owning the given store. A nil dispatcher
// defaults to the round-robin policy.
func New(store *state.Store, backend sim.Backend, dispatcher Dispatcher, options ...Option) *Environment {
	if dispatcher == nil {
		dispatcher = RoundRobin{}
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := &Environment{
		store:      store,
		backend:    backend,
		dispatcher: dispatcher,
		logger:     logger,
		agents:     map[sim.AgentID]sim.Agent{},
		gasLimit:   defaultGasLimit,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// RegisterAgent binds an agent to the environment and seeds the balances of
// its controlled accounts. Registration order defines the dispatch order
// for the rest of the run; agents cannot be removed again.
func (e *Environment) RegisterAgent(id sim.AgentID, agent sim.Agent, accounts map[sim.Address]sim.Value) error {
	if _, found := e.agents[id]; found {
		return fmt.Errorf("%w: %v", sim.ErrDuplicateAgent, id)
	}
	e.agents[id] = agent
	e.roster = append(e.roster, id)
	for addr, balance := range accounts {
		e.store.SetBalance(addr, balance)
	}
	e.logger.WithField("agent", id).Debug("agent registered")
	return nil
}

// DeployContract builds a creation transaction for the given initialization
// code and submits it through the normal execution path. The address of the
// new contract is only valid if the returned result has StatusSuccess; a
// reverting constructor is reported through the result, not the error.
func (e *Environment) DeployContract(deployer sim.Address, initCode sim.Code) (sim.Address, sim.Result, error) {
	result, err := e.Submit(sim.Transaction{
		Sender: deployer,
		Input:  sim.Data(initCode),
	})
	if err != nil {
		return sim.Address{}, result, err
	}
	if result.Status != sim.StatusSuccess || result.ContractAddress == nil {
		return sim.Address{}, result, nil
	}
	return *result.ContractAddress, result, nil
}

// LoadContractState force-installs code and storage for an address without
// executing a transaction, e.g. to mirror a real-world contract snapshot
// into the simulation. The installation bypasses nonce and gas semantics
// entirely and is recorded in the execution log with StatusForced.
func (e *Environment) LoadContractState(addr sim.Address, code sim.Code, storage []sim.StorageEntry) {
	e.store.SetCode(addr, code)
	for _, entry := range storage {
		e.store.SetStorage(addr, entry.Key, entry.Value)
	}
	e.record("", sim.Transaction{Recipient: &addr}, sim.Result{Status: sim.StatusForced})
	e.logger.WithField("address", addr).Debug("contract state installed")
}

// Submit executes a single transaction against the current state. The
// sender's nonce is assigned by the environment, and a zero gas limit is
// replaced by the configured default. Reverts and malformed transactions
// are returned as result data with a nil error; a non-nil error indicates a
// broken setup or a violated store invariant and is fatal to the run.
func (e *Environment) Submit(tx sim.Transaction) (sim.Result, error) {
	return e.submit("", tx)
}

func (e *Environment) submit(agent sim.AgentID, tx sim.Transaction) (sim.Result, error) {
	tx.Nonce = e.store.GetNonce(tx.Sender)
	if tx.GasLimit == 0 {
		tx.GasLimit = e.gasLimit
	}
	block := e.block
	block.Number = int64(e.steps)

	result, diff, err := e.backend.Execute(block, tx, e.store)
	if err != nil {
		e.logger.WithError(err).WithField("sender", tx.Sender).Warn("backend failed to process transaction")
		result = sim.Result{Status: sim.StatusFailed, GasUsed: tx.GasLimit}
		diff = nil
	}

	if result.Status == sim.StatusSuccess {
		if err := e.store.Apply(diff); err != nil {
			return result, err
		}
	} else if len(diff) != 0 {
		return result, fmt.Errorf("%w: backend produced a state diff for a %v transaction",
			sim.ErrStateCorruption, result.Status)
	}

	e.record(agent, tx, result)
	return result, nil
}

// Step performs one tick of simulated time: the dispatcher selects the
// acting agents, their transaction requests are collected and executed in
// dispatcher order, and each result is delivered back to its originating
// agent. The step counter advances exactly once per call, regardless of
// how many transactions were submitted. Agents polled later in a step
// observe the committed effects of agents polled earlier.
func (e *Environment) Step() ([]sim.Result, error) {
	schedule := e.dispatcher.Schedule(e.steps, slices.Clone(e.roster))

	var results []sim.Result
	for _, id := range schedule {
		agent, found := e.agents[id]
		if !found {
			return nil, fmt.Errorf("%w: %v", sim.ErrUnknownAgent, id)
		}
		tx := agent.DecideNextAction(e.store)
		if tx == nil {
			continue
		}
		result, err := e.submit(id, *tx)
		if err != nil {
			return nil, err
		}
		agent.ReceiveResult(result)
		results = append(results, result)
	}

	e.steps++
	return results, nil
}

// Run executes up to the given number of steps, stopping early if the
// halting condition fires. It returns the number of steps executed.
func (e *Environment) Run(steps int) (int, error) {
	for i := 0; i < steps; i++ {
		if e.halt != nil && e.halt(e.store, e.steps) {
			e.logger.WithField("step", e.steps).Info("halting condition met")
			return i, nil
		}
		if _, err := e.Step(); err != nil {
			return i, err
		}
	}
	return steps, nil
}

// StepCount returns the number of completed steps.
func (e *Environment) StepCount() uint64 {
	return e.steps
}

// State grants read-only access to the current simulated chain state.
func (e *Environment) State() sim.StateReader {
	return e.store
}

// ExecutionLog returns a copy of all recorded execution-log entries.
func (e *Environment) ExecutionLog() []LogEntry {
	return slices.Clone(e.log)
}

func (e *Environment) record(agent sim.AgentID, tx sim.Transaction, result sim.Result) {
	e.log = append(e.log, LogEntry{
		Step:        e.steps,
		Agent:       agent,
		Transaction: tx,
		Result:      result,
	})
	for _, observer := range e.observers {
		observer.ObserveResult(e.steps, agent, tx, result)
	}
	e.logger.WithFields(logrus.Fields{
		"step":   e.steps,
		"agent":  agent,
		"status": result.Status,
		"gas":    result.GasUsed,
	}).Debug("transaction processed")
}

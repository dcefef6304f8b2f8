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

import "errors"

// Configuration and invariant errors. Unlike reverted or failed
// transactions, which are reported as Result data, these are fatal to a
// simulation run.
var (
	// ErrDuplicateAgent is returned when registering an agent under an
	// identifier that is already taken.
	ErrDuplicateAgent = errors.New("agent id already registered")

	// ErrUnknownAgent is returned when a dispatcher schedules an agent that
	// was never registered.
	ErrUnknownAgent = errors.New("unknown agent scheduled")

	// ErrStateCorruption is returned when an internal invariant of the state
	// store is violated, e.g. a backend produced a diff for a failed
	// transaction or a diff that would decrease a nonce. It indicates a bug,
	// never an economic outcome.
	ErrStateCorruption = errors.New("state corruption detected")
)

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
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides registries for Interpreter and Backend implementations.
//
// The registries are intended to be used by all client applications that
// would like to run simulations. For an implementation to be available it
// needs to be registered. Typically, this registration is part of the init
// code of the package providing an implementation. Thus, by including the
// implementation package, implementations become available in these central
// registries.

// NewInterpreter performs a lookup for the given name (case-insensitive) in
// the registry and creates a new Interpreter using the given optional
// configuration. If no configuration is provided, the implementation uses
// its default configuration. An error is returned if no factory was
// registered under the given name.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := GetInterpreterFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	c := any(nil)
	if len(config) > 0 {
		c = config[0]
	}
	return factory(c)
}

// GetInterpreterFactory performs a lookup for the given name
// (case-insensitive) in the registry. The result is nil if no factory was
// registered under the given name.
func GetInterpreterFactory(name string) InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return interpreterRegistry[strings.ToLower(name)]
}

// GetAllRegisteredInterpreters obtains all registered implementations.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return maps.Clone(interpreterRegistry)
}

// RegisterInterpreterFactory registers a new Interpreter implementation to
// be exported for general use in the binary. The name is not case-sensitive,
// and an error is returned if a factory was bound to the same name before,
// or the factory is nil. This function is mainly intended to be used by
// package initialization code.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, found := interpreterRegistry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	interpreterRegistry[key] = factory
	return nil
}

// MustRegisterInterpreterFactory is like RegisterInterpreterFactory but
// panics on registration errors, for use in init functions.
func MustRegisterInterpreterFactory(name string, factory InterpreterFactory) {
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		panic(err)
	}
}

// InterpreterFactory is the type of a function that creates a new
// Interpreter using an interpreter specific configuration.
type InterpreterFactory func(config any) (Interpreter, error)

// NewBackend performs a lookup for the given name (case-insensitive) in the
// backend registry and creates a new Backend on top of the given
// interpreter. An error is returned if no factory was registered under the
// given name.
func NewBackend(name string, interpreter Interpreter) (Backend, error) {
	factory := GetBackendFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("backend not found: %s", name)
	}
	return factory(interpreter), nil
}

// GetBackendFactory performs a lookup for the given name (case-insensitive)
// in the registry. The result is nil if no factory was registered under the
// given name.
func GetBackendFactory(name string) BackendFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return backendRegistry[strings.ToLower(name)]
}

// GetAllRegisteredBackends obtains all registered implementations.
func GetAllRegisteredBackends() map[string]BackendFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return maps.Clone(backendRegistry)
}

// RegisterBackendFactory registers a new Backend implementation to be
// exported for general use in the binary. The name is not case-sensitive,
// and a panic is triggered if a factory was bound to the same name before,
// or the factory is nil. This function is mainly intended to be used by
// package initialization code.
func RegisterBackendFactory(name string, factory BackendFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("invalid initialization: cannot register nil-factory using `%s`", key))
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, found := backendRegistry[key]; found {
		panic(fmt.Sprintf("invalid initialization: multiple factories registered for `%s`", key))
	}
	backendRegistry[key] = factory
}

var (
	interpreterRegistry = map[string]InterpreterFactory{}
	backendRegistry     = map[string]BackendFactory{}

	// registryLock protects access to both registries.
	registryLock sync.Mutex
)

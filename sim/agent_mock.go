// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package sim is a generated GoMock package.
package sim

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockAgent is a mock of Agent interface.
type MockAgent struct {
	ctrl     *gomock.Controller
	recorder *MockAgentMockRecorder
}

// MockAgentMockRecorder is the mock recorder for MockAgent.
type MockAgentMockRecorder struct {
	mock *MockAgent
}

// NewMockAgent creates a new mock instance.
func NewMockAgent(ctrl *gomock.Controller) *MockAgent {
	mock := &MockAgent{ctrl: ctrl}
	mock.recorder = &MockAgentMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAgent) EXPECT() *MockAgentMockRecorder {
	return m.recorder
}

// DecideNextAction mocks base method.
func (m *MockAgent) DecideNextAction(arg0 StateReader) *Transaction {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DecideNextAction", arg0)
	ret0, _ := ret[0].(*Transaction)
	return ret0
}

// DecideNextAction indicates an expected call of DecideNextAction.
func (mr *MockAgentMockRecorder) DecideNextAction(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DecideNextAction", reflect.TypeOf((*MockAgent)(nil).DecideNextAction), arg0)
}

// ReceiveResult mocks base method.
func (m *MockAgent) ReceiveResult(arg0 Result) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ReceiveResult", arg0)
}

// ReceiveResult indicates an expected call of ReceiveResult.
func (mr *MockAgentMockRecorder) ReceiveResult(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReceiveResult", reflect.TypeOf((*MockAgent)(nil).ReceiveResult), arg0)
}

// MockObserver is a mock of Observer interface.
type MockObserver struct {
	ctrl     *gomock.Controller
	recorder *MockObserverMockRecorder
}

// MockObserverMockRecorder is the mock recorder for MockObserver.
type MockObserverMockRecorder struct {
	mock *MockObserver
}

// NewMockObserver creates a new mock instance.
func NewMockObserver(ctrl *gomock.Controller) *MockObserver {
	mock := &MockObserver{ctrl: ctrl}
	mock.recorder = &MockObserverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockObserver) EXPECT() *MockObserverMockRecorder {
	return m.recorder
}

// ObserveResult mocks base method.
func (m *MockObserver) ObserveResult(arg0 uint64, arg1 AgentID, arg2 Transaction, arg3 Result) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveResult", arg0, arg1, arg2, arg3)
}

// ObserveResult indicates an expected call of ObserveResult.
func (mr *MockObserverMockRecorder) ObserveResult(arg0, arg1, arg2, arg3 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveResult", reflect.TypeOf((*MockObserver)(nil).ObserveResult), arg0, arg1, arg2, arg3)
}

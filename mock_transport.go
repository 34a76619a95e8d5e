// Hand-written in MockGen's generated-code shape for the interfaces in
// transport.go.

package moor

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockTransport is a mock of the Transport interface.
type MockTransport struct {
	ctrl     *gomock.Controller
	recorder *MockTransportMockRecorder
}

// MockTransportMockRecorder is the mock recorder for MockTransport.
type MockTransportMockRecorder struct {
	mock *MockTransport
}

// NewMockTransport creates a new mock instance.
func NewMockTransport(ctrl *gomock.Controller) *MockTransport {
	mock := &MockTransport{ctrl: ctrl}
	mock.recorder = &MockTransportMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransport) EXPECT() *MockTransportMockRecorder {
	return m.recorder
}

// OpenConnection mocks base method.
func (m *MockTransport) OpenConnection(ctx context.Context, endpoint Endpoint) (TransportConnection, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OpenConnection", ctx, endpoint)
	ret0, _ := ret[0].(TransportConnection)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// OpenConnection indicates an expected call of OpenConnection.
func (mr *MockTransportMockRecorder) OpenConnection(ctx, endpoint interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenConnection", reflect.TypeOf((*MockTransport)(nil).OpenConnection), ctx, endpoint)
}

// MockTransportConnection is a mock of the TransportConnection interface.
type MockTransportConnection struct {
	ctrl     *gomock.Controller
	recorder *MockTransportConnectionMockRecorder
}

// MockTransportConnectionMockRecorder is the mock recorder for MockTransportConnection.
type MockTransportConnectionMockRecorder struct {
	mock *MockTransportConnection
}

// NewMockTransportConnection creates a new mock instance.
func NewMockTransportConnection(ctrl *gomock.Controller) *MockTransportConnection {
	mock := &MockTransportConnection{ctrl: ctrl}
	mock.recorder = &MockTransportConnectionMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransportConnection) EXPECT() *MockTransportConnectionMockRecorder {
	return m.recorder
}

// OpenSenderLink mocks base method.
func (m *MockTransportConnection) OpenSenderLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string) (SenderLink, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OpenSenderLink", ctx, address, queue, capabilities, linkName)
	ret0, _ := ret[0].(SenderLink)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// OpenSenderLink indicates an expected call of OpenSenderLink.
func (mr *MockTransportConnectionMockRecorder) OpenSenderLink(ctx, address, queue, capabilities, linkName interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenSenderLink", reflect.TypeOf((*MockTransportConnection)(nil).OpenSenderLink), ctx, address, queue, capabilities, linkName)
}

// OpenReceiverLink mocks base method.
func (m *MockTransportConnection) OpenReceiverLink(ctx context.Context, address, queue string, capabilities LinkCapabilities, linkName string, credit int) (ReceiverLink, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OpenReceiverLink", ctx, address, queue, capabilities, linkName, credit)
	ret0, _ := ret[0].(ReceiverLink)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// OpenReceiverLink indicates an expected call of OpenReceiverLink.
func (mr *MockTransportConnectionMockRecorder) OpenReceiverLink(ctx, address, queue, capabilities, linkName, credit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenReceiverLink", reflect.TypeOf((*MockTransportConnection)(nil).OpenReceiverLink), ctx, address, queue, capabilities, linkName, credit)
}

// Closed mocks base method.
func (m *MockTransportConnection) Closed() <-chan ConnectionClosedEvent {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Closed")
	ret0, _ := ret[0].(<-chan ConnectionClosedEvent)
	return ret0
}

// Closed indicates an expected call of Closed.
func (mr *MockTransportConnectionMockRecorder) Closed() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Closed", reflect.TypeOf((*MockTransportConnection)(nil).Closed))
}

// IsOpened mocks base method.
func (m *MockTransportConnection) IsOpened() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsOpened")
	ret0, _ := ret[0].(bool)
	return ret0
}

// IsOpened indicates an expected call of IsOpened.
func (mr *MockTransportConnectionMockRecorder) IsOpened() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsOpened", reflect.TypeOf((*MockTransportConnection)(nil).IsOpened))
}

// Close mocks base method.
func (m *MockTransportConnection) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockTransportConnectionMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockTransportConnection)(nil).Close))
}

// MockSenderLink is a mock of the SenderLink interface.
type MockSenderLink struct {
	ctrl     *gomock.Controller
	recorder *MockSenderLinkMockRecorder
}

// MockSenderLinkMockRecorder is the mock recorder for MockSenderLink.
type MockSenderLinkMockRecorder struct {
	mock *MockSenderLink
}

// NewMockSenderLink creates a new mock instance.
func NewMockSenderLink(ctrl *gomock.Controller) *MockSenderLink {
	mock := &MockSenderLink{ctrl: ctrl}
	mock.recorder = &MockSenderLinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSenderLink) EXPECT() *MockSenderLinkMockRecorder {
	return m.recorder
}

// Send mocks base method.
func (m *MockSenderLink) Send(ctx context.Context, tag uint64, message *Message) (Disposition, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", ctx, tag, message)
	ret0, _ := ret[0].(Disposition)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Send indicates an expected call of Send.
func (mr *MockSenderLinkMockRecorder) Send(ctx, tag, message interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockSenderLink)(nil).Send), ctx, tag, message)
}

// Closed mocks base method.
func (m *MockSenderLink) Closed() <-chan error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Closed")
	ret0, _ := ret[0].(<-chan error)
	return ret0
}

// Closed indicates an expected call of Closed.
func (mr *MockSenderLinkMockRecorder) Closed() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Closed", reflect.TypeOf((*MockSenderLink)(nil).Closed))
}

// Close mocks base method.
func (m *MockSenderLink) Close(cause error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close", cause)
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockSenderLinkMockRecorder) Close(cause interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSenderLink)(nil).Close), cause)
}

// MockReceiverLink is a mock of the ReceiverLink interface.
type MockReceiverLink struct {
	ctrl     *gomock.Controller
	recorder *MockReceiverLinkMockRecorder
}

// MockReceiverLinkMockRecorder is the mock recorder for MockReceiverLink.
type MockReceiverLinkMockRecorder struct {
	mock *MockReceiverLink
}

// NewMockReceiverLink creates a new mock instance.
func NewMockReceiverLink(ctrl *gomock.Controller) *MockReceiverLink {
	mock := &MockReceiverLink{ctrl: ctrl}
	mock.recorder = &MockReceiverLinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockReceiverLink) EXPECT() *MockReceiverLinkMockRecorder {
	return m.recorder
}

// Deliveries mocks base method.
func (m *MockReceiverLink) Deliveries() <-chan Delivery {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Deliveries")
	ret0, _ := ret[0].(<-chan Delivery)
	return ret0
}

// Deliveries indicates an expected call of Deliveries.
func (mr *MockReceiverLinkMockRecorder) Deliveries() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Deliveries", reflect.TypeOf((*MockReceiverLink)(nil).Deliveries))
}

// Accept mocks base method.
func (m *MockReceiverLink) Accept(tag uint64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Accept", tag)
	ret0, _ := ret[0].(error)
	return ret0
}

// Accept indicates an expected call of Accept.
func (mr *MockReceiverLinkMockRecorder) Accept(tag interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Accept", reflect.TypeOf((*MockReceiverLink)(nil).Accept), tag)
}

// Reject mocks base method.
func (m *MockReceiverLink) Reject(tag uint64, cause error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Reject", tag, cause)
	ret0, _ := ret[0].(error)
	return ret0
}

// Reject indicates an expected call of Reject.
func (mr *MockReceiverLinkMockRecorder) Reject(tag, cause interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reject", reflect.TypeOf((*MockReceiverLink)(nil).Reject), tag, cause)
}

// AddCredit mocks base method.
func (m *MockReceiverLink) AddCredit(n int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddCredit", n)
	ret0, _ := ret[0].(error)
	return ret0
}

// AddCredit indicates an expected call of AddCredit.
func (mr *MockReceiverLinkMockRecorder) AddCredit(n interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddCredit", reflect.TypeOf((*MockReceiverLink)(nil).AddCredit), n)
}

// Closed mocks base method.
func (m *MockReceiverLink) Closed() <-chan error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Closed")
	ret0, _ := ret[0].(<-chan error)
	return ret0
}

// Closed indicates an expected call of Closed.
func (mr *MockReceiverLinkMockRecorder) Closed() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Closed", reflect.TypeOf((*MockReceiverLink)(nil).Closed))
}

// Close mocks base method.
func (m *MockReceiverLink) Close(cause error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close", cause)
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockReceiverLinkMockRecorder) Close(cause interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockReceiverLink)(nil).Close), cause)
}

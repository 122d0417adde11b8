package mocks

import (
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.SecurityLayer = (*SecurityLayer)(nil)

type SecurityLayer struct {
	mock.Mock
}

// NewSecurityLayer creates a SecurityLayer mock whose expectations are asserted
// on test cleanup.
func NewSecurityLayer(t interface {
	mock.TestingT
	Cleanup(func())
}) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	ln, _ := args.Get(0).(net.Listener)
	return ln, args.Error(1)
}

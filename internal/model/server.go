package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners, either plain TCP or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network front end (HTTP API or gRPC guard) run by main.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
	Name() string
}

package address

import (
	"net"
	"strconv"
	"strings"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 7777
)

// Addr resolves to a dialable "host:port" string.
type Addr interface {
	Get() string
}

// Endpoint is the target a word is delivered to. It is fixed once the
// operator has answered the startup prompt.
type Endpoint struct {
	host string
	port uint16
}

// NewEndpoint trims host and falls back to DefaultHost when nothing is left.
func NewEndpoint(host string, port uint16) Endpoint {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	return Endpoint{host, port}
}

func (e Endpoint) Host() string {
	return e.host
}

func (e Endpoint) Port() uint16 {
	return e.port
}

// WithPort returns a copy of e targeting port.
func (e Endpoint) WithPort(port uint16) Endpoint {
	return Endpoint{e.host, port}
}

func (e Endpoint) Get() string {
	return net.JoinHostPort(e.host, strconv.Itoa(int(e.port)))
}

func (e Endpoint) String() string {
	return e.Get()
}

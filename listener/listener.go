// Package listener is a stand-in for the engine side of the channel: it
// accepts line-based commands, logs them and echoes an acknowledgement.
package listener

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/scalog/wordsender/logger"
)

const DefaultAddr = "127.0.0.1:7777"

type Handler func(command string)

type Listener struct {
	addr    string
	handler Handler

	lis      net.Listener
	clients  map[net.Conn]struct{}
	clientMu sync.Mutex
	closed   bool
	wg       sync.WaitGroup
}

func NewListener(addr string, handler Handler) *Listener {
	return &Listener{
		addr:    addr,
		handler: handler,
		clients: make(map[net.Conn]struct{}),
	}
}

// Start binds the address. Serve must be called to accept connections.
func (l *Listener) Start() error {
	lis, err := net.Listen("tcp", l.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %v", l.addr)
	}
	l.lis = lis
	log.Infof("TCP listener on %v", lis.Addr())
	return nil
}

// Addr is the bound address; useful when started on port 0.
func (l *Listener) Addr() net.Addr {
	return l.lis.Addr()
}

// Serve accepts connections until Close is called.
func (l *Listener) Serve() error {
	for {
		conn, err := l.lis.Accept()
		if err != nil {
			if l.isClosed() {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		if !l.track(conn) {
			conn.Close()
			return nil
		}
		go l.handle(conn)
	}
}

// track registers conn and its handler; false once Close has begun.
func (l *Listener) track(conn net.Conn) bool {
	l.clientMu.Lock()
	defer l.clientMu.Unlock()
	if l.closed {
		return false
	}
	l.clients[conn] = struct{}{}
	l.wg.Add(1)
	return true
}

func (l *Listener) isClosed() bool {
	l.clientMu.Lock()
	defer l.clientMu.Unlock()
	return l.closed
}

func (l *Listener) untrack(conn net.Conn) {
	l.clientMu.Lock()
	delete(l.clients, conn)
	l.clientMu.Unlock()
}

func (l *Listener) handle(conn net.Conn) {
	defer l.wg.Done()
	defer l.untrack(conn)
	defer conn.Close()

	log.Debugf("client %v connected", conn.RemoteAddr())
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		raw := scanner.Bytes()
		command := strings.TrimSpace(string(raw))
		log.Infof("received %q raw bytes [% x] (length: %v)", command, raw, len(raw))
		if l.handler != nil {
			l.handler(command)
		}
		if _, err := fmt.Fprintf(conn, "Received: %v\n", command); err != nil {
			log.Debugf("echo to %v: %v", conn.RemoteAddr(), err)
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) && !l.isClosed() {
		log.Warnf("client %v: %v", conn.RemoteAddr(), err)
	}
	log.Debugf("client %v disconnected", conn.RemoteAddr())
}

// Close stops accepting, drops every live client and waits for their
// handlers to return.
func (l *Listener) Close() error {
	l.clientMu.Lock()
	if l.closed {
		l.clientMu.Unlock()
		return nil
	}
	l.closed = true
	var err error
	if l.lis != nil {
		err = l.lis.Close()
	}
	for c := range l.clients {
		c.Close()
	}
	l.clientMu.Unlock()
	l.wg.Wait()
	log.Infof("TCP listener stopped")
	return err
}

// Package sender delivers operator words to a line-based TCP listener, one
// fresh connection per word.
package sender

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/scalog/wordsender/logger"
	"github.com/scalog/wordsender/pkg/address"
)

const ExitKeyword = "exit"

type State int

const (
	AwaitingInput State = iota
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "AwaitingInput"
	case Terminated:
		return "Terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Config struct {
	// Host skips the startup prompt when non-empty.
	Host string
	Port uint16
	In   io.Reader
	Out  io.Writer
	// ProbePorts, when set, are tried in order once the host is known and the
	// first open one replaces Port.
	ProbePorts   []uint16
	ProbeTimeout time.Duration
}

// Sender is the interactive console loop. It is not safe for concurrent use.
type Sender struct {
	host         string
	port         uint16
	probePorts   []uint16
	probeTimeout time.Duration
	reader       *bufio.Reader
	out          io.Writer
	endpoint     address.Endpoint
	state        State
	deliver      func(address.Addr, string) error
}

func NewSender(cfg Config) *Sender {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Sender{
		host:         cfg.Host,
		port:         cfg.Port,
		probePorts:   cfg.ProbePorts,
		probeTimeout: timeout,
		reader:       bufio.NewReader(cfg.In),
		out:          cfg.Out,
		state:        AwaitingInput,
		deliver:      Deliver,
	}
}

func (s *Sender) State() State {
	return s.state
}

// Endpoint is valid once Run has read the target host.
func (s *Sender) Endpoint() address.Endpoint {
	return s.endpoint
}

// Run asks for the host once, then reads words until the exit keyword or end
// of input. Delivery failures are printed and never end the loop.
func (s *Sender) Run() error {
	host := s.host
	if strings.TrimSpace(host) == "" {
		fmt.Fprintf(s.out, "Enter target IP (default %v): ", address.DefaultHost)
		line, ok, err := s.readLine()
		if err != nil {
			return err
		}
		if !ok {
			s.state = Terminated
			return nil
		}
		host = line
	}
	s.endpoint = address.NewEndpoint(host, s.port)
	if len(s.probePorts) > 0 {
		port, err := Probe(s.endpoint.Host(), s.probePorts, s.probeTimeout, s.out)
		if err != nil {
			fmt.Fprintf(s.out, "Probe failed, keeping port %v: %v\n", s.port, err)
		} else {
			s.endpoint = s.endpoint.WithPort(port)
		}
	}
	log.Debugf("target endpoint %v", s.endpoint)

	fmt.Fprintf(s.out, "Connecting to %v\n", s.endpoint)
	fmt.Fprintf(s.out, "Type a word and press Enter to send it (type '%v' to quit)\n", ExitKeyword)

	for s.state == AwaitingInput {
		fmt.Fprint(s.out, "→ Your Word: ")
		word, ok, err := s.readLine()
		if err != nil {
			return err
		}
		if !ok {
			s.state = Terminated
			break
		}
		s.handle(word)
	}
	return nil
}

func (s *Sender) handle(word string) {
	word = strings.TrimSpace(word)
	switch {
	case strings.EqualFold(word, ExitKeyword):
		fmt.Fprintln(s.out, "Exiting...")
		s.state = Terminated
	case word == "":
	default:
		if err := s.deliver(s.endpoint, word); err != nil {
			log.Debugf("delivery failed: %v", err)
			fmt.Fprintf(s.out, "Connection Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "Sent: %v\n", word)
	}
}

// readLine returns ok=false at end of input. Lines have no length limit; a
// final line without a newline is still returned.
func (s *Sender) readLine() (string, bool, error) {
	line, err := s.reader.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		return strings.TrimSpace(line), true, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read console input")
	}
	return strings.TrimSpace(line), true, nil
}

package sender

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/scalog/wordsender/pkg/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sink accepts connections and reports everything each one carried.
type sink struct {
	lis      net.Listener
	payloads chan []byte
}

func newSink(t *testing.T) *sink {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	s := &sink{lis: lis, payloads: make(chan []byte, 16)}
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				b, _ := io.ReadAll(conn)
				s.payloads <- b
			}()
		}
	}()
	return s
}

func (s *sink) port() uint16 {
	return uint16(s.lis.Addr().(*net.TCPAddr).Port)
}

func (s *sink) next(t *testing.T) []byte {
	select {
	case b := <-s.payloads:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no connection received")
	}
	return nil
}

func (s *sink) Close() {
	s.lis.Close()
}

// closedPort returns a loopback port with nothing listening on it.
func closedPort(t *testing.T) uint16 {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	port := uint16(lis.Addr().(*net.TCPAddr).Port)
	require.Nil(t, lis.Close())
	return port
}

type call struct {
	addr string
	word string
}

func recorder(calls *[]call, err error) func(address.Addr, string) error {
	return func(a address.Addr, w string) error {
		*calls = append(*calls, call{a.Get(), w})
		return err
	}
}

func run(t *testing.T, cfg Config, input string, deliver func(address.Addr, string) error) (*Sender, string) {
	var out bytes.Buffer
	cfg.In = strings.NewReader(input)
	cfg.Out = &out
	s := NewSender(cfg)
	if deliver != nil {
		s.deliver = deliver
	}
	require.Nil(t, s.Run())
	return s, out.String()
}

func TestScenario(t *testing.T) {
	sk := newSink(t)
	defer sk.Close()

	s, out := run(t, Config{Port: sk.port()}, "\nhello\n   \nexit\n", nil)

	assert.Equal(t, "hello\n", string(sk.next(t)))
	assert.Equal(t, "127.0.0.1", s.Endpoint().Host())
	assert.Equal(t, Terminated, s.State())
	assert.Contains(t, out, "Connecting to 127.0.0.1:")
	assert.Contains(t, out, "Sent: hello\n")
	assert.Contains(t, out, "Exiting...\n")
	assert.Equal(t, 1, strings.Count(out, "Sent:"))
	assert.NotContains(t, out, "Connection Error")
}

func TestDefaultHost(t *testing.T) {
	for _, answer := range []string{"", "   ", "\t"} {
		var calls []call
		s, _ := run(t, Config{Port: address.DefaultPort}, answer+"\nword\nexit\n", recorder(&calls, nil))
		assert.Equal(t, "127.0.0.1:7777", s.Endpoint().Get())
		require.Len(t, calls, 1)
		assert.Equal(t, "127.0.0.1:7777", calls[0].addr)
	}
}

func TestOperatorHost(t *testing.T) {
	var calls []call
	_, out := run(t, Config{Port: address.DefaultPort}, " engine.lan \na\nb\nexit\n", recorder(&calls, nil))
	assert.Equal(t, []call{{"engine.lan:7777", "a"}, {"engine.lan:7777", "b"}}, calls)
	assert.Contains(t, out, "Connecting to engine.lan:7777")
}

func TestPresetHostSkipsPrompt(t *testing.T) {
	var calls []call
	_, out := run(t, Config{Host: "10.1.1.1", Port: address.DefaultPort}, "jump\nexit\n", recorder(&calls, nil))
	assert.NotContains(t, out, "Enter target IP")
	assert.Equal(t, []call{{"10.1.1.1:7777", "jump"}}, calls)
}

func TestExitKeyword(t *testing.T) {
	for _, kw := range []string{"exit", "Exit", "EXIT", "  eXiT  "} {
		var calls []call
		s, out := run(t, Config{Port: address.DefaultPort}, "\n"+kw+"\nnever\n", recorder(&calls, nil))
		assert.Empty(t, calls, kw)
		assert.Equal(t, Terminated, s.State())
		assert.Contains(t, out, "Exiting...")
		assert.NotContains(t, out, "never")
	}
}

func TestBlankInputIsSilent(t *testing.T) {
	var calls []call
	_, out := run(t, Config{Port: address.DefaultPort}, "\n \n\t\n    \nexit\n", recorder(&calls, nil))
	assert.Empty(t, calls)
	assert.NotContains(t, out, "Sent:")
	assert.NotContains(t, out, "Connection Error")
}

func TestWordIsTrimmed(t *testing.T) {
	var calls []call
	_, out := run(t, Config{Port: address.DefaultPort}, "\n   wave hello \t\nexit\n", recorder(&calls, nil))
	require.Len(t, calls, 1)
	assert.Equal(t, "wave hello", calls[0].word)
	assert.Contains(t, out, "Sent: wave hello\n")
}

func TestDeliveryFailureContinues(t *testing.T) {
	var calls []call
	fail := errors.New("boom")
	s, out := run(t, Config{Port: address.DefaultPort}, "\none\ntwo\nexit\n", recorder(&calls, fail))
	assert.Len(t, calls, 2)
	assert.Equal(t, 2, strings.Count(out, "Connection Error: boom"))
	assert.Equal(t, 3, strings.Count(out, "→ Your Word: "))
	assert.Equal(t, Terminated, s.State())
}

func TestConnectionRefused(t *testing.T) {
	port := closedPort(t)
	_, out := run(t, Config{Port: port}, "\nhello\nexit\n", nil)
	assert.Contains(t, out, "Connection Error:")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "Exiting...")
}

func TestEndOfInput(t *testing.T) {
	var calls []call
	s, out := run(t, Config{Port: address.DefaultPort}, "\nlast", recorder(&calls, nil))
	assert.Equal(t, []call{{"127.0.0.1:7777", "last"}}, calls)
	assert.Equal(t, Terminated, s.State())
	assert.NotContains(t, out, "Exiting...")

	s, out = run(t, Config{Port: address.DefaultPort}, "", recorder(&calls, nil))
	assert.Equal(t, Terminated, s.State())
	assert.NotContains(t, out, "Connecting to")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "AwaitingInput", AwaitingInput.String())
	assert.Equal(t, "Terminated", Terminated.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestLongLineKeepsLooping(t *testing.T) {
	var calls []call
	long := strings.Repeat("a", 2<<20)
	s, out := run(t, Config{Port: address.DefaultPort}, "\n"+long+"\nhello\nexit\n", recorder(&calls, nil))
	require.Len(t, calls, 2)
	assert.Equal(t, long, calls[0].word)
	assert.Equal(t, "hello", calls[1].word)
	assert.Equal(t, Terminated, s.State())
	assert.Contains(t, out, "Exiting...")
}

func TestProbeSelectsPort(t *testing.T) {
	sk := newSink(t)
	defer sk.Close()

	cfg := Config{
		Port:         address.DefaultPort,
		ProbePorts:   []uint16{closedPort(t), sk.port()},
		ProbeTimeout: time.Second,
	}
	var calls []call
	s, out := run(t, cfg, "\nhello\nexit\n", recorder(&calls, nil))
	assert.Equal(t, sk.port(), s.Endpoint().Port())
	require.Len(t, calls, 1)
	assert.Equal(t, s.Endpoint().Get(), calls[0].addr)
	assert.Contains(t, out, "Found TCP listener")
}

func TestProbeFailureKeepsPort(t *testing.T) {
	cfg := Config{
		Port:         address.DefaultPort,
		ProbePorts:   []uint16{closedPort(t)},
		ProbeTimeout: time.Second,
	}
	var calls []call
	s, out := run(t, cfg, "\nhello\nexit\n", recorder(&calls, nil))
	assert.Equal(t, uint16(address.DefaultPort), s.Endpoint().Port())
	assert.Contains(t, out, "Probe failed, keeping port 7777")
	assert.Equal(t, []call{{"127.0.0.1:7777", "hello"}}, calls)
}

package sender

import (
	"fmt"
	"net"

	log "github.com/scalog/wordsender/logger"
	"github.com/scalog/wordsender/pkg/address"
)

// DeliveryError is the single failure kind of a delivery: the dial or the
// write did not complete.
type DeliveryError struct {
	Addr string
	Word string
	Op   string // "dial" or "write"
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%v %q: %v", e.Op, e.Word, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Deliver opens a new TCP connection to addr, writes word followed by a
// single '\n' and closes the connection. Nothing is read back.
func Deliver(addr address.Addr, word string) error {
	target := addr.Get()
	conn, err := net.Dial("tcp", target)
	if err != nil {
		return &DeliveryError{Addr: target, Word: word, Op: "dial", Err: err}
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(word + "\n")); err != nil {
		return &DeliveryError{Addr: target, Word: word, Op: "write", Err: err}
	}
	log.Debugf("delivered %q to %v via %v", word, target, conn.LocalAddr())
	return nil
}

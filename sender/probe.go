package sender

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	log "github.com/scalog/wordsender/logger"
	"github.com/scalog/wordsender/pkg/address"
)

const DefaultProbeTimeout = time.Second

var DefaultProbePorts = []uint16{7777, 7778, 7779, 7780, 11111}

var ErrNoListener = errors.New("no TCP listener found on any tested port")

// Probe dials host on each port in turn and returns the first one that
// accepts. Each attempt is reported on out; a nil out discards the report.
func Probe(host string, ports []uint16, timeout time.Duration, out io.Writer) (uint16, error) {
	if out == nil {
		out = io.Discard
	}
	base := address.NewEndpoint(host, 0)
	for _, port := range ports {
		target := base.WithPort(port).Get()
		fmt.Fprintf(out, "Testing port %v...\n", port)
		conn, err := net.DialTimeout("tcp", target, timeout)
		if err != nil {
			log.Debugf("probe %v: %v", target, err)
			fmt.Fprintf(out, "Port %v failed: %v\n", port, err)
			continue
		}
		conn.Close()
		fmt.Fprintf(out, "Found TCP listener on port %v\n", port)
		return port, nil
	}
	return 0, errors.Wrapf(ErrNoListener, "host %v", base.Host())
}

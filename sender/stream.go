package sender

import (
	"strings"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"github.com/pkg/errors"
	log "github.com/scalog/wordsender/logger"
	"github.com/scalog/wordsender/pkg/address"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultStreamDelay = 100 * time.Millisecond
	latencyWindow      = 10
)

// Report summarizes a Stream call. Latencies holds one entry per word sent.
type Report struct {
	Sent      int
	Latencies []time.Duration
}

func (r Report) millis() []float64 {
	ms := make([]float64, len(r.Latencies))
	for i, l := range r.Latencies {
		ms[i] = float64(l) / float64(time.Millisecond)
	}
	return ms
}

func (r Report) Mean() time.Duration {
	if len(r.Latencies) == 0 {
		return 0
	}
	return time.Duration(stat.Mean(r.millis(), nil) * float64(time.Millisecond))
}

// StdDev is the sample standard deviation; zero for fewer than two words.
func (r Report) StdDev() time.Duration {
	if len(r.Latencies) < 2 {
		return 0
	}
	return time.Duration(stat.StdDev(r.millis(), nil) * float64(time.Millisecond))
}

// Words trims every word and drops the blank ones.
func Words(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Stream delivers words in order, each on its own connection, sleeping delay
// between deliveries. Blank words are skipped. It stops at the first failure.
func Stream(addr address.Addr, words []string, delay time.Duration) (Report, error) {
	return stream(Deliver, addr, words, delay)
}

func stream(deliver func(address.Addr, string) error, addr address.Addr, words []string, delay time.Duration) (Report, error) {
	var report Report
	pending := Words(words)
	log.Infof("streaming %v words to %v", len(pending), addr.Get())

	avg := movingaverage.New(latencyWindow)
	for i, w := range pending {
		start := time.Now()
		if err := deliver(addr, w); err != nil {
			return report, errors.Wrapf(err, "word %v/%v", i+1, len(pending))
		}
		elapsed := time.Since(start)
		report.Sent++
		report.Latencies = append(report.Latencies, elapsed)
		avg.Add(float64(elapsed) / float64(time.Millisecond))
		log.Debugf("sent %q in %v (rolling avg %.3fms)", w, elapsed, avg.Avg())

		if i < len(pending)-1 && delay > 0 {
			time.Sleep(delay)
		}
	}
	log.Infof("stream completed: %v words", report.Sent)
	return report, nil
}

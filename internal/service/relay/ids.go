package relay

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Generator produces unique session IDs for one process lifetime.
type Generator struct {
	prefix  string
	started int64
	counter uint64
}

// NewGenerator creates a Generator. IDs embed the principal and process
// start time so restarts never collide.
func NewGenerator(principal string) *Generator {
	return &Generator{
		prefix:  principal,
		started: time.Now().Unix(),
	}
}

// Next returns the next session ID.
func (g *Generator) Next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-%d-sess-%d", g.prefix, g.started, n)
}

// Package traced is the trace-mode diagnostic side-channel: a gRPC
// TraceService that fans decoded inbound/outbound frames out to whichever
// external monitors are watching (spec.md §4.5/§7 trace mode), grounded on
// the teacher's Proxy.Events()-channel shape (proxy/proxy.go) generalized
// into a multi-subscriber broker the way server.Server's broker.Broker did.
package traced

import (
	"sync"

	"github.com/mysqlx-shell/core/tracepb"
)

// Broker fans published events out to every current subscriber. A slow or
// absent subscriber never blocks publishing: its channel is buffered and
// events are dropped once full.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan tracepb.Event
	next int
}

// NewBroker allocates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan tracepb.Event)}
}

// Subscribe registers a new listener and returns its event channel plus an
// unsubscribe function the caller must call exactly once when done.
func (b *Broker) Subscribe() (<-chan tracepb.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan tracepb.Event, 64)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Publish delivers ev to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *Broker) Publish(ev tracepb.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

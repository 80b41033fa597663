// Package events carries field activity to interested consumers, such as
// the archive recorder, without blocking the insert path.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Type string

const (
	WaveInserted    Type = "wave.inserted"
	CrystalFormed   Type = "crystal.formed"
	InsightProduced Type = "insight.produced"
)

// Event is one field occurrence. Exactly one payload pointer is set,
// matching Type.
type Event struct {
	Type    Type
	Step    int
	Wave    *WavePayload
	Crystal *CrystalPayload
	Insight *InsightPayload
}

type WavePayload struct {
	WaveID    string
	Text      string
	Amplitude float64
	Frequency float64
	Keywords  []string
}

type CrystalPayload struct {
	CrystalID string
	Stability float64
	Members   []string
	Keywords  []string
}

type InsightPayload struct {
	Query      string
	Summary    string
	Confidence float64
	Collapse   float64
	Evidence   []string
}

const publishTimeout = 100 * time.Millisecond

// Bus is a buffered single-consumer event stream. Publishing never blocks
// longer than publishTimeout; overflow events are dropped and counted.
type Bus struct {
	events  chan Event
	closed  bool
	dropped atomic.Uint64
	mu      sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{events: make(chan Event, 100)}
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.events <- ev:
	default:
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.events <- ev:
		case <-timer.C:
			b.dropped.Add(1)
		}
	}
}

// Consume blocks for the next event. ok is false once the bus is closed
// and drained, or the context is done.
func (b *Bus) Consume(ctx context.Context) (Event, bool) {
	select {
	case ev, ok := <-b.events:
		if !ok {
			return Event{}, false
		}
		return ev, true
	case <-ctx.Done():
		return Event{}, false
	}
}

// Close stops accepting events. Buffered events remain consumable until
// the channel drains.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}

func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

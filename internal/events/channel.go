package events

import (
	"context"
	"sync"
)

// ChannelSource is an in-process, non-blocking event source: Publish
// never blocks the producer, and Poll drains whatever has accumulated
// since the last call. Suitable for single-instance deployments and
// the default used by the CLI demo.
type ChannelSource struct {
	mu     sync.Mutex
	buf    []Event
	closed bool
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{}
}

// Publish enqueues an event for the next Poll. Non-blocking: a closed
// source silently drops the event.
func (c *ChannelSource) Publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.buf = append(c.buf, e)
}

func (c *ChannelSource) Poll(context.Context) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) == 0 {
		return nil
	}
	drained := c.buf
	c.buf = nil
	return drained
}

func (c *ChannelSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.buf = nil
	return nil
}

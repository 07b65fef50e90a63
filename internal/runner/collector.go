package runner

import (
	"bytes"
	"sync"
)

// collector captures process output up to maxBytes. Anything beyond the limit
// is discarded and recorded as truncation; writes never fail.
type collector struct {
	mu        sync.Mutex
	buffer    bytes.Buffer
	maxBytes  int64
	truncated bool
}

func newCollector(maxBytes int64) *collector {
	return &collector{maxBytes: maxBytes}
}

func (c *collector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.maxBytes - int64(c.buffer.Len())
	if remaining <= 0 {
		if len(p) > 0 {
			c.truncated = true
		}
		return len(p), nil
	}

	toWrite := p
	if int64(len(toWrite)) > remaining {
		toWrite = toWrite[:remaining]
		c.truncated = true
	}
	c.buffer.Write(toWrite)
	return len(p), nil
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

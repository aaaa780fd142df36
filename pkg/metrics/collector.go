package metrics

import "time"

// QueueDepther is implemented by the block manager; it is polled
// periodically to keep the resync queue depth gauge current without
// requiring every enqueue/dequeue call site to touch Prometheus directly.
type QueueDepther interface {
	ResyncQueueDepth() (int, error)
}

// Collector periodically samples gauges that are cheaper to poll than
// to update inline on every state change.
type Collector struct {
	blocks QueueDepther
	stopCh chan struct{}
}

// NewCollector creates a metrics collector polling the given block manager.
func NewCollector(blocks QueueDepther) *Collector {
	return &Collector{
		blocks: blocks,
		stopCh: make(chan struct{}),
	}
}

// Start begins the polling loop in a background goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the polling loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.blocks == nil {
		return
	}
	depth, err := c.blocks.ResyncQueueDepth()
	if err != nil {
		return
	}
	ResyncQueueDepth.Set(float64(depth))
}

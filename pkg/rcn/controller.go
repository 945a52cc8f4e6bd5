// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// Notifier is the strategy a Controller invokes whenever a cached level
// is written, whether from a local optimistic update or from a status
// update broadcast by the host. It is feedback to the user of the
// channel; implementations should not trigger further channel updates
// from inside the callback.
type Notifier interface {
	NotifyLevel(channel, rng, aux, oldLevel, newLevel uint8)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(channel, rng, aux, oldLevel, newLevel uint8)

// NotifyLevel calls f.
func (f NotifierFunc) NotifyLevel(channel, rng, aux, oldLevel, newLevel uint8) {
	f(channel, rng, aux, oldLevel, newLevel)
}

// Controller holds a cached mirror of one remote host's channel table.
// Local Set/Adjust calls update the cache optimistically and emit
// directed update requests; the cache becomes authoritative again only
// when the host's status-update broadcast is applied by Run.
//
// There is no shared memory with the host and no automatic recovery: a
// lost request leaves the cache stale until the host next broadcasts or
// the caller invokes Sync.
type Controller struct {
	node     *Node
	host     uint8 // node id of the remote host owning the channels
	table    channelTable
	notifier Notifier
	log      Logger
}

// NewController builds a controller node mirroring channels owned by
// host. notifier may be nil; log may be nil.
func NewController(cfg Config, host uint8, tr Transport, notifier Notifier, log Logger) (*Controller, error) {
	node, err := NewNode(cfg, tr, log)
	if err != nil {
		return nil, err
	}
	if host < NodeMin || host > NodeMax {
		return nil, ErrBadNodeID
	}
	return &Controller{
		node:     node,
		host:     host,
		table:    newChannelTable(cfg.MaxChannels),
		notifier: notifier,
		log:      log,
	}, nil
}

func (c *Controller) logf(format string, v ...interface{}) {
	if c.log != nil {
		c.log.Printf(format, v...)
	}
}

// Node exposes the underlying protocol endpoint, mainly for stats.
func (c *Controller) Node() *Node {
	return c.node
}

// Host returns the node id of the mirrored remote host.
func (c *Controller) Host() uint8 {
	return c.host
}

// NumChannels returns the number of mirrored channels.
func (c *Controller) NumChannels() int {
	return c.table.len()
}

// update writes the cache and fires the notifier. It is the single
// mutation path for cached levels.
func (c *Controller) update(channel uint8, value int) uint8 {
	ch := &c.table.channels[channel]
	v := clampLevel(value, ch.rng)
	if c.notifier != nil {
		c.notifier.NotifyLevel(channel, ch.rng, ch.aux, ch.level, v)
	}
	ch.level = v
	return v
}

// AddChannel registers a mirrored channel at startup and returns its
// id. The local default is seeded and then immediately resynchronized
// with a status request rather than trusted.
func (c *Controller) AddChannel(rng, level, aux uint8) (uint8, error) {
	id, err := c.table.add(rng, level, aux)
	if err != nil {
		return 0, err
	}
	c.update(id, int(level))
	if err := c.Sync(id); err != nil {
		return id, err
	}
	return id, nil
}

// Get reads a channel's cached level.
func (c *Controller) Get(channel uint8) (uint8, error) {
	if !c.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	return c.table.channels[channel].level, nil
}

// Range returns a channel's registered range.
func (c *Controller) Range(channel uint8) (uint8, error) {
	if !c.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	return c.table.channels[channel].rng, nil
}

// Sync requests a fresh status update for the channel from the host.
func (c *Controller) Sync(channel uint8) error {
	if !c.table.has(channel) {
		return ErrUnknownChannel
	}
	return c.node.RequestStatus(c.host, channel)
}

// Set changes a channel's absolute level: the cache is updated
// optimistically (clamped to the range, notifier fired) and a directed
// absolute update request is sent. The host's eventual broadcast
// overwrites the optimistic value.
func (c *Controller) Set(channel uint8, value int) (uint8, error) {
	if !c.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	v := c.update(channel, value)
	if err := c.node.RequestAbsolute(c.host, channel, v); err != nil {
		return v, err
	}
	return v, nil
}

// Adjust changes a channel's level by a delta. The delta is clamped to
// the signed-byte wire range and applied optimistically; the request is
// sent only when the clamped delta is non-zero, since a zero delta
// would have no effect on the host.
func (c *Controller) Adjust(channel uint8, delta int) (uint8, error) {
	if !c.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	d := clampDelta(delta)
	v := c.update(channel, int(c.table.channels[channel].level)+int(d))
	if d != 0 {
		if err := c.node.RequestRelative(c.host, channel, d); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Run performs one cooperative step: it polls the node and applies at
// most one status update. Only broadcasts carrying an absolute level
// for a known channel are accepted; this is the sole path by which the
// cache becomes authoritative again after an optimistic write.
func (c *Controller) Run() {
	p := c.node.Poll()
	if p == nil {
		return
	}
	if !p.Broadcast() {
		c.logf("rcn: controller: ignoring directed packet from node %d", p.NodeID())
		return
	}
	if !c.table.has(p.Channel()) {
		c.node.Stats().UnknownChannel++
		c.logf("rcn: controller: illegal channel %d in status update", p.Channel())
		return
	}
	if p.Relative() {
		c.node.Stats().InvalidKind++
		c.logf("rcn: controller: channel %d: %v", p.Channel(), ErrInvalidUpdateKind)
		return
	}
	old := c.table.channels[p.Channel()].level
	c.update(p.Channel(), int(p.AbsLevel()))
	c.logf("rcn: controller: status update for channel %d: %d -> %d", p.Channel(), old, p.AbsLevel())
}

// Sleep powers the transport down to save the battery.
func (c *Controller) Sleep() error {
	return c.node.Sleep()
}

// Wake restores the transport. With reset true every cached level is
// zeroed immediately, one notifier call per channel, so the caller
// treats the device as stale until fresh broadcasts arrive. The cache
// write notifies even when the level was already zero, like every
// other cache write.
func (c *Controller) Wake(reset bool) error {
	if err := c.node.Wake(); err != nil {
		return err
	}
	if reset {
		for i := 0; i < c.table.len(); i++ {
			c.update(uint8(i), 0)
		}
	}
	return nil
}

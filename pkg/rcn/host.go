// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// Filter is the strategy a Host consults before storing a new channel
// level. It receives the channel's registered details along with the
// current and proposed levels, and returns the level that will actually
// be stored. Returning oldLevel rejects the update, returning newLevel
// adopts it; any other value within 0..rng is valid.
//
// The returned level is stored as-is, without re-clamping: the filter
// must respect the 0..rng contract.
type Filter interface {
	FilterUpdate(channel, rng, aux, oldLevel, newLevel uint8) uint8
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(channel, rng, aux, oldLevel, newLevel uint8) uint8

// FilterUpdate calls f.
func (f FilterFunc) FilterUpdate(channel, rng, aux, oldLevel, newLevel uint8) uint8 {
	return f(channel, rng, aux, oldLevel, newLevel)
}

// PassFilter adopts every proposed level unchanged.
var PassFilter Filter = FilterFunc(func(_, _, _, _, newLevel uint8) uint8 {
	return newLevel
})

// Host owns the authoritative channel table for a node. It services
// directed update requests through the filter and answers every
// processed request with exactly one status-update broadcast, whether
// or not the level changed. That broadcast is the liveness guarantee
// controllers depend on.
type Host struct {
	node   *Node
	table  channelTable
	filter Filter
	log    Logger
}

// NewHost builds a host node on the given transport. filter must not be
// nil (use PassFilter to accept everything); log may be nil.
func NewHost(cfg Config, tr Transport, filter Filter, log Logger) (*Host, error) {
	node, err := NewNode(cfg, tr, log)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = PassFilter
	}
	return &Host{
		node:   node,
		table:  newChannelTable(cfg.MaxChannels),
		filter: filter,
		log:    log,
	}, nil
}

func (h *Host) logf(format string, v ...interface{}) {
	if h.log != nil {
		h.log.Printf(format, v...)
	}
}

// Node exposes the underlying protocol endpoint, mainly for stats.
func (h *Host) Node() *Node {
	return h.node
}

// NumChannels returns the number of registered channels.
func (h *Host) NumChannels() int {
	return h.table.len()
}

// AddChannel registers a channel at startup and returns its id. The
// initial level is seeded through the filter with old == new, then
// broadcast. The channel count is fixed once the host starts running.
func (h *Host) AddChannel(rng, level, aux uint8) (uint8, error) {
	id, err := h.table.add(rng, level, aux)
	if err != nil {
		return 0, err
	}
	ch := &h.table.channels[id]
	ch.level = h.filter.FilterUpdate(id, ch.rng, ch.aux, ch.level, ch.level)
	if err := h.node.BroadcastStatus(id, ch.level); err != nil {
		return id, err
	}
	return id, nil
}

// Get returns a channel's current authoritative level.
func (h *Host) Get(channel uint8) (uint8, error) {
	if !h.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	return h.table.channels[channel].level, nil
}

// Set changes a channel's level locally (e.g. a wall switch wired to
// the host). The update flows through the same filter-and-broadcast
// path as remote requests.
func (h *Host) Set(channel uint8, value int) (uint8, error) {
	if !h.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	ch := &h.table.channels[channel]
	candidate := clampLevel(value, ch.rng)
	ch.level = h.filter.FilterUpdate(channel, ch.rng, ch.aux, ch.level, candidate)
	if err := h.node.BroadcastStatus(channel, ch.level); err != nil {
		return ch.level, err
	}
	return ch.level, nil
}

// Adjust changes a channel's level locally by a delta.
func (h *Host) Adjust(channel uint8, delta int) (uint8, error) {
	if !h.table.has(channel) {
		return 0, ErrUnknownChannel
	}
	return h.Set(channel, int(h.table.channels[channel].level)+delta)
}

// ProcessRequest services one parsed update request. Unknown channels
// are logged and dropped with no state change. Everything else,
// including a status request (relative, delta 0) and updates the filter
// rejects, yields exactly one broadcast.
func (h *Host) ProcessRequest(channel uint8, relative bool, value byte) {
	if !h.table.has(channel) {
		h.node.Stats().UnknownChannel++
		h.logf("rcn: host: illegal channel %d in request", channel)
		return
	}

	old := h.table.channels[channel].level
	var err error
	var level uint8
	if relative {
		level, err = h.Adjust(channel, int(int8(value)))
	} else {
		level, err = h.Set(channel, int(value))
	}
	if err != nil {
		h.logf("rcn: host: request on channel %d: %v", channel, err)
		return
	}
	switch {
	case relative && int8(value) == 0:
		h.logf("rcn: host: status request for channel %d: %d", channel, level)
	case relative:
		h.logf("rcn: host: adjust channel %d: %d %+d => %d", channel, old, int8(value), level)
	default:
		h.logf("rcn: host: set channel %d: %d -> %d", channel, value, level)
	}
}

// Run performs one cooperative step: it polls the node and dispatches
// at most one inbound request. Broadcasts from other hosts are ignored;
// only directed packets are requests. Call it often.
func (h *Host) Run() {
	p := h.node.Poll()
	if p == nil {
		return
	}
	if p.Broadcast() {
		h.logf("rcn: host: ignoring broadcast from node %d", p.NodeID())
		return
	}
	h.ProcessRequest(p.Channel(), p.Relative(), p.AbsLevel())
}

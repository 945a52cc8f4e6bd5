// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// channelState is one channel's registered range, current level and
// auxiliary tag. The aux byte is opaque: it is handed back to the
// filter/notifier callbacks unmodified and never transmitted.
type channelState struct {
	rng   uint8
	level uint8
	aux   uint8
}

// channelTable is the fixed-size per-channel state array shared in
// shape by hosts and controllers. Channels are added once at startup;
// the count never shrinks and never exceeds the capacity fixed at
// construction. The table owner's update algorithm is the only mutator,
// which keeps 0 <= level <= range true at all observable times.
type channelTable struct {
	channels []channelState
}

func newChannelTable(max int) channelTable {
	return channelTable{channels: make([]channelState, 0, max)}
}

// add appends a channel and returns its id. The initial level is
// clamped to the declared range.
func (t *channelTable) add(rng, level, aux uint8) (uint8, error) {
	if len(t.channels) == cap(t.channels) {
		return 0, ErrTableFull
	}
	id := uint8(len(t.channels))
	t.channels = append(t.channels, channelState{
		rng:   rng,
		level: clampLevel(int(level), rng),
		aux:   aux,
	})
	return id, nil
}

func (t *channelTable) has(channel uint8) bool {
	return int(channel) < len(t.channels)
}

func (t *channelTable) len() int {
	return len(t.channels)
}

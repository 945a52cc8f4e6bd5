// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import "fmt"

// Config holds the static radio identity of a node. None of it can
// change after construction.
type Config struct {
	Band   Band  // one of the three fixed frequency bands
	Group  uint8 // network group id, 1..212
	NodeID uint8 // this node's id, 1..30

	// MaxChannels bounds the owner's channel table, 1..128.
	MaxChannels int
}

func (c Config) validate() error {
	switch c.Band {
	case Band433MHz, Band868MHz, Band915MHz:
	default:
		return fmt.Errorf("%w: band %d", ErrBadConfig, c.Band)
	}
	if c.Group < GroupMin || c.Group > GroupMax {
		return fmt.Errorf("%w: group %d (legal %d..%d)", ErrBadConfig, c.Group, GroupMin, GroupMax)
	}
	if c.NodeID < NodeMin || c.NodeID > NodeMax {
		return fmt.Errorf("%w: node id %d (legal %d..%d)", ErrBadConfig, c.NodeID, NodeMin, NodeMax)
	}
	if c.MaxChannels < 1 || c.MaxChannels > MaxChannels {
		return fmt.Errorf("%w: max channels %d (legal 1..%d)", ErrBadConfig, c.MaxChannels, MaxChannels)
	}
	return nil
}

// Node is the packet-protocol endpoint: it couples the codec and the
// send queue to the transport collaborator. It is constructed once and
// passed explicitly to its owning Host or Controller; there are no
// process-wide singletons.
//
// A Node performs no retries and never blocks. The owner must invoke
// Poll repeatedly from its own poll step.
type Node struct {
	cfg   Config
	tr    Transport
	queue SendQueue
	stats Statistics
	log   Logger
}

// NewNode validates the configuration and builds a node on the given
// transport. log may be nil to disable diagnostics.
func NewNode(cfg Config, tr Transport, log Logger) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrBadConfig)
	}
	n := &Node{cfg: cfg, tr: tr, log: log}
	n.stats.Reset()
	n.logf("rcn: node %d.%d up @ %s", cfg.Group, cfg.NodeID, cfg.Band)
	return n, nil
}

// Config returns the node's static configuration.
func (n *Node) Config() Config {
	return n.cfg
}

// Stats returns the node's packet counters.
func (n *Node) Stats() *Statistics {
	return &n.stats
}

// QueueLen returns the number of packets waiting to be transmitted.
func (n *Node) QueueLen() int {
	return n.queue.Len()
}

func (n *Node) logf(format string, v ...interface{}) {
	if n.log != nil {
		n.log.Printf(format, v...)
	}
}

func (n *Node) enqueue(p OutgoingPacket) error {
	if err := n.queue.Enqueue(p); err != nil {
		n.stats.QueueDrops++
		n.logf("rcn: %v", err)
		return err
	}
	return nil
}

// BroadcastStatus enqueues a status-update broadcast reporting the
// current absolute level of a channel.
func (n *Node) BroadcastStatus(channel, level uint8) error {
	if channel > MaxChannelID {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	return n.enqueue(newStatusUpdate(n.cfg.NodeID, channel, level))
}

// RequestAbsolute enqueues a directed update request setting a
// channel's level outright.
func (n *Node) RequestAbsolute(host, channel, level uint8) error {
	if err := checkDest(host, channel); err != nil {
		return err
	}
	return n.enqueue(newUpdateRequest(host, channel, false, level))
}

// RequestRelative enqueues a directed update request adjusting a
// channel's level by a signed delta. A zero delta is a status request.
func (n *Node) RequestRelative(host, channel uint8, delta int8) error {
	if err := checkDest(host, channel); err != nil {
		return err
	}
	return n.enqueue(newUpdateRequest(host, channel, true, byte(delta)))
}

// RequestStatus enqueues a status request: on the wire it is exactly a
// relative update request with delta 0.
func (n *Node) RequestStatus(host, channel uint8) error {
	return n.RequestRelative(host, channel, 0)
}

func checkDest(host, channel uint8) error {
	if host < NodeMin || host > NodeMax {
		return fmt.Errorf("%w: %d", ErrBadNodeID, host)
	}
	if channel > MaxChannelID {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}
	return nil
}

// Poll is the node's single non-blocking step. It transmits at most one
// queued packet in FIFO order if the transport is ready, then ingests
// at most one inbound frame. Frames failing CRC or payload validation
// are counted and dropped silently; they are never a hard error.
//
// The return value is nil when no valid frame arrived.
func (n *Node) Poll() *RecvPacket {
	if !n.queue.Empty() && n.tr.CanSend() {
		p, _ := n.queue.Dequeue()
		if err := n.tr.Send(p.Header, p.Payload[:]); err != nil {
			n.logf("rcn: send failed: %v", err)
		} else {
			n.stats.Sent++
			n.logf("rcn: sent %s", FormatOutgoing(p))
		}
	}

	if !n.tr.ReceiveReady() {
		return nil
	}

	header, payload, crcOK := n.tr.LastReceived()
	if !crcOK {
		n.stats.CRCErrors++
		n.logf("rcn: dropping frame with CRC mismatch")
		return nil
	}
	pkt, err := DecodePayload(header, payload)
	if err != nil {
		n.stats.Malformed++
		n.logf("rcn: dropping frame: %v", err)
		return nil
	}
	n.stats.Received++
	return &pkt
}

// Sleep powers the transport down. Queued packets stay queued; nothing
// is withdrawn.
func (n *Node) Sleep() error {
	return n.tr.Sleep()
}

// Wake restores the transport after Sleep.
func (n *Node) Wake() error {
	return n.tr.Wake()
}

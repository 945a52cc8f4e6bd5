// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// OutgoingPacket is one not-yet-transmitted packet, stored in its wire
// encoding. It lives in the SendQueue from enqueue until the poll step
// hands it to the transport.
type OutgoingPacket struct {
	Header  byte
	Payload [PayloadSize]byte
}

// Directed reports whether the packet is addressed to a single node
// rather than broadcast to the group.
func (p OutgoingPacket) Directed() bool {
	return p.Header&HeaderDST != 0
}

// NodeID returns the destination node for directed packets, or the
// sending node for broadcasts.
func (p OutgoingPacket) NodeID() uint8 {
	return p.Header & headerNodeMask
}

// RecvPacket is the parsed view of one received frame. It is transient:
// it only exists for the duration of one poll call.
type RecvPacket struct {
	header   byte
	channel  uint8
	relative bool
	value    byte
}

// Broadcast reports whether the frame was a group broadcast (a status
// update) as opposed to a directed request.
func (p RecvPacket) Broadcast() bool {
	return p.header&HeaderDST == 0
}

// NodeID returns the source node for broadcasts, or the destination
// node for directed packets.
func (p RecvPacket) NodeID() uint8 {
	return p.header & headerNodeMask
}

// Channel returns the channel id (0..127).
func (p RecvPacket) Channel() uint8 {
	return p.channel
}

// Relative reports whether the value byte is a signed delta.
func (p RecvPacket) Relative() bool {
	return p.relative
}

// AbsLevel returns the value byte as an absolute level (0..255).
func (p RecvPacket) AbsLevel() uint8 {
	return p.value
}

// RelLevel returns the value byte as a signed delta (-128..127).
func (p RecvPacket) RelLevel() int8 {
	return int8(p.value)
}

// StatusRequest reports whether the packet is a status request: a
// directed update request with the relative flag set and a zero delta.
// There is no distinct wire message for it.
func (p RecvPacket) StatusRequest() bool {
	return !p.Broadcast() && p.relative && p.value == 0
}
